package story

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/metrics"
)

// revShareScale converts a percentage into the 10^6 fixed-point scale used by the license template
const revShareScale = 1_000_000

var (
	// ErrReadOnly is returned by write operations when no signing key is configured
	ErrReadOnly = errors.New("ledger client has no signing key")
	// ErrRemixHubDisabled is returned when no RemixHub contract address is configured
	ErrRemixHubDisabled = errors.New("remix hub contract not configured")
	// ErrIPRegisteredEventMissing is returned when a registration receipt carries no IPRegistered log
	ErrIPRegisteredEventMissing = errors.New("IPRegistered event not found in receipt")
	// ErrParentHasNoLicenseTerms is returned when a parent has no attached license terms to derive from
	ErrParentHasNoLicenseTerms = errors.New("parent ip asset has no attached license terms")
)

// Config holds the ledger client configuration
type Config struct {
	ChainID                           int64
	PrivateKey                        string
	SPGNFTContract                    string
	LicenseAttachmentWorkflowsAddress string
	DerivativeWorkflowsAddress        string
	IPAssetRegistryAddress            string
	LicenseRegistryAddress            string
	LicenseTemplateAddress            string
	RoyaltyPolicyAddress              string
	RemixHubAddress                   string
	Currency                          string
	CommercialRevShare                uint32 // percent
	DefaultMintingFee                 string // wei
	StartBlock                        uint64
	LogBlockRange                     uint64
	ConfirmationTimeout               time.Duration
	ReceiptPollInterval               time.Duration
}

// Registration is the result of a finalized ledger registration
type Registration struct {
	IPID   string
	TxHash string
}

// ScanFilter selects RemixHub OriginalRegistered events
type ScanFilter struct {
	FromBlock uint64
	// ToBlock of 0 means the latest block
	ToBlock uint64
	Owner   *string
}

// Client is the Story protocol ledger client
//
//go:generate mockgen -source=client.go -destination=../../mocks/ledger.go -package=mocks -mock_names=Client=MockLedgerClient
type Client interface {
	// RegisterIP mints an NFT, registers it as an IP asset with commercial remix terms and waits for finalization
	RegisterIP(ctx context.Context, metadataCID string) (*Registration, error)
	// RegisterDerivative registers metadataCID as a derivative of parentIPID and waits for finalization
	RegisterDerivative(ctx context.Context, parentIPID string, metadataCID string) (*Registration, error)
	// AnchorOriginal records ipId and cidHash in the RemixHub contract and returns the transaction hash
	AnchorOriginal(ctx context.Context, ipID string, cidHash string, presetID uint16) (string, error)
	// IsRegistered asks the IP asset registry whether ipID is a registered IP asset
	IsRegistered(ctx context.Context, ipID string) (bool, error)
	// ScanOriginals returns RemixHub OriginalRegistered events in the filter range
	ScanOriginals(ctx context.Context, filter ScanFilter) ([]domain.OriginalRegistered, error)
	// LatestBlock returns the current block number
	LatestBlock(ctx context.Context) (uint64, error)
	// RemixHubEnabled reports whether a RemixHub contract is configured
	RemixHubEnabled() bool
	// Close closes the RPC connection
	Close()
}

type client struct {
	cfg     Config
	eth     adapter.EthClient
	clock   adapter.Clock
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int

	// txMu serializes nonce selection and submission for the signing account
	txMu sync.Mutex
}

// NewClient creates a ledger client. PrivateKey may be empty for read-only use.
func NewClient(cfg Config, eth adapter.EthClient, clock adapter.Clock) (Client, error) {
	if cfg.LogBlockRange == 0 {
		cfg.LogBlockRange = 10000
	}
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = 2 * time.Minute
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = 2 * time.Second
	}

	c := &client{
		cfg:     cfg,
		eth:     eth,
		clock:   clock,
		chainID: big.NewInt(cfg.ChainID),
	}

	if pk := strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"); pk != "" {
		key, err := crypto.HexToECDSA(pk)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		c.key = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

func (c *client) RegisterIP(ctx context.Context, metadataCID string) (*Registration, error) {
	fee, ok := new(big.Int).SetString(c.cfg.DefaultMintingFee, 10)
	if !ok {
		fee = big.NewInt(0)
	}

	terms := licenseTermsData{
		Terms: pilTerms{
			Transferable:              true,
			RoyaltyPolicy:             common.HexToAddress(c.cfg.RoyaltyPolicyAddress),
			DefaultMintingFee:         fee,
			Expiration:                big.NewInt(0),
			CommercialUse:             true,
			CommercialAttribution:     true,
			CommercializerChecker:     common.Address{},
			CommercializerCheckerData: []byte{},
			CommercialRevShare:        c.cfg.CommercialRevShare * revShareScale,
			CommercialRevCeiling:      big.NewInt(0),
			DerivativesAllowed:        true,
			DerivativesAttribution:    true,
			DerivativesApproval:       false,
			DerivativesReciprocal:     true,
			DerivativeRevCeiling:      big.NewInt(0),
			Currency:                  common.HexToAddress(c.cfg.Currency),
			URI:                       "",
		},
		LicensingConfig: licensingConfig{
			MintingFee: big.NewInt(0),
			HookData:   []byte{},
		},
	}

	receipt, err := c.transact(ctx, "mintAndRegisterIpAndAttachPILTerms",
		licenseAttachmentWorkflowsABI, common.HexToAddress(c.cfg.LicenseAttachmentWorkflowsAddress),
		common.HexToAddress(c.cfg.SPGNFTContract),
		c.from,
		c.metadataFor(metadataCID),
		[]licenseTermsData{terms},
		true,
	)
	if err != nil {
		return nil, err
	}

	ipID, err := c.registeredIPID(receipt)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "IP registered",
		zap.String("ipId", ipID),
		zap.String("txHash", receipt.TxHash.Hex()),
		zap.String("metadataCid", metadataCID))

	return &Registration{IPID: ipID, TxHash: receipt.TxHash.Hex()}, nil
}

func (c *client) RegisterDerivative(ctx context.Context, parentIPID string, metadataCID string) (*Registration, error) {
	parent := common.HexToAddress(parentIPID)

	termsID, err := c.parentLicenseTermsID(ctx, parent)
	if err != nil {
		return nil, err
	}

	receipt, err := c.transact(ctx, "mintAndRegisterIpAndMakeDerivative",
		derivativeWorkflowsABI, common.HexToAddress(c.cfg.DerivativeWorkflowsAddress),
		common.HexToAddress(c.cfg.SPGNFTContract),
		makeDerivative{
			ParentIPIDs:     []common.Address{parent},
			LicenseTemplate: common.HexToAddress(c.cfg.LicenseTemplateAddress),
			LicenseTermsIDs: []*big.Int{termsID},
			RoyaltyContext:  []byte{},
			MaxMintingFee:   big.NewInt(0),
			MaxRts:          100_000_000,
			MaxRevenueShare: 100 * revShareScale,
		},
		c.metadataFor(metadataCID),
		c.from,
		true,
	)
	if err != nil {
		return nil, err
	}

	ipID, err := c.registeredIPID(receipt)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Derivative registered",
		zap.String("ipId", ipID),
		zap.String("parentIpId", parent.Hex()),
		zap.String("txHash", receipt.TxHash.Hex()))

	return &Registration{IPID: ipID, TxHash: receipt.TxHash.Hex()}, nil
}

func (c *client) AnchorOriginal(ctx context.Context, ipID string, cidHash string, presetID uint16) (string, error) {
	if !c.RemixHubEnabled() {
		return "", ErrRemixHubDisabled
	}

	receipt, err := c.transact(ctx, "registerOriginal",
		remixHubABI, common.HexToAddress(c.cfg.RemixHubAddress),
		common.HexToAddress(ipID).Big(),
		common.HexToHash(cidHash),
		presetID,
	)
	if err != nil {
		return "", err
	}

	return receipt.TxHash.Hex(), nil
}

func (c *client) IsRegistered(ctx context.Context, ipID string) (bool, error) {
	var registered bool
	err := c.call(ctx, ipAssetRegistryABI, common.HexToAddress(c.cfg.IPAssetRegistryAddress), "isRegistered", &registered,
		common.HexToAddress(ipID))
	if err != nil {
		return false, err
	}
	return registered, nil
}

func (c *client) LatestBlock(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	return n, nil
}

func (c *client) RemixHubEnabled() bool {
	return c.cfg.RemixHubAddress != "" && common.HexToAddress(c.cfg.RemixHubAddress) != (common.Address{})
}

func (c *client) Close() {
	c.eth.Close()
}

// metadataFor builds the ip and nft metadata pointing at the pinned document
func (c *client) metadataFor(metadataCID string) ipMetadata {
	hash := domain.CIDHashBytes(metadataCID)
	uri := "ipfs://" + metadataCID
	return ipMetadata{
		IPMetadataURI:   uri,
		IPMetadataHash:  hash,
		NFTMetadataURI:  uri,
		NFTMetadataHash: hash,
	}
}

// parentLicenseTermsID returns the first license terms id attached to parent
func (c *client) parentLicenseTermsID(ctx context.Context, parent common.Address) (*big.Int, error) {
	registry := common.HexToAddress(c.cfg.LicenseRegistryAddress)

	var count *big.Int
	if err := c.call(ctx, licenseRegistryABI, registry, "getAttachedLicenseTermsCount", &count, parent); err != nil {
		return nil, err
	}
	if count == nil || count.Sign() == 0 {
		return nil, ErrParentHasNoLicenseTerms
	}

	var attached struct {
		LicenseTemplate common.Address `abi:"licenseTemplate"`
		LicenseTermsID  *big.Int       `abi:"licenseTermsId"`
	}
	if err := c.call(ctx, licenseRegistryABI, registry, "getAttachedLicenseTerms", &attached, parent, big.NewInt(0)); err != nil {
		return nil, err
	}

	return attached.LicenseTermsID, nil
}

// registeredIPID extracts the ip id from the IPRegistered log emitted by the IP asset registry
func (c *client) registeredIPID(receipt *types.Receipt) (string, error) {
	event := ipAssetRegistryABI.Events["IPRegistered"]
	registry := common.HexToAddress(c.cfg.IPAssetRegistryAddress)

	for _, l := range receipt.Logs {
		if l == nil || l.Address != registry || len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		values, err := event.Inputs.NonIndexed().Unpack(l.Data)
		if err != nil {
			return "", fmt.Errorf("failed to unpack IPRegistered event: %w", err)
		}
		ipID, ok := values[0].(common.Address)
		if !ok {
			return "", fmt.Errorf("unexpected ipId type %T", values[0])
		}
		return ipID.Hex(), nil
	}

	return "", ErrIPRegisteredEventMissing
}

// call performs a read-only contract call and unpacks the result into out
func (c *client) call(ctx context.Context, contract abi.ABI, to common.Address, method string, out interface{}, args ...interface{}) error {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		metrics.LedgerCallsTotal.WithLabelValues(method, metrics.OutcomeError).Inc()
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	metrics.LedgerCallsTotal.WithLabelValues(method, metrics.OutcomeOK).Inc()

	if err := contract.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("failed to unpack %s result: %w", method, err)
	}

	return nil
}

// transact packs, signs and submits a contract call, then waits for a successful receipt
func (c *client) transact(ctx context.Context, method string, contract abi.ABI, to common.Address, args ...interface{}) (*types.Receipt, error) {
	if c.key == nil {
		return nil, ErrReadOnly
	}

	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	tx, err := c.send(ctx, method, to, data)
	if err != nil {
		metrics.LedgerCallsTotal.WithLabelValues(method, metrics.OutcomeError).Inc()
		return nil, err
	}

	logger.InfoCtx(ctx, "Transaction submitted",
		zap.String("method", method),
		zap.String("txHash", tx.Hash().Hex()),
		zap.Uint64("nonce", tx.Nonce()))

	receipt, err := c.waitMined(ctx, tx.Hash())
	if err != nil {
		metrics.LedgerCallsTotal.WithLabelValues(method, metrics.OutcomeError).Inc()
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.LedgerCallsTotal.WithLabelValues(method, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}

	metrics.LedgerCallsTotal.WithLabelValues(method, metrics.OutcomeOK).Inc()
	return receipt, nil
}

// send builds a dynamic fee transaction for data and submits it
func (c *client) send(ctx context.Context, method string, to common.Address, data []byte) (*types.Transaction, error) {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}

	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	feeCap := new(big.Int).Set(tip)
	if head != nil && head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:      c.from,
		To:        &to,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas for %s: %w", method, err)
	}
	gas = gas * 6 / 5

	tx, err := types.SignTx(types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      data,
	}), types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send %s transaction: %w", method, err)
	}

	return tx, nil
}

// waitMined polls for the receipt of hash until it is available or the confirmation timeout elapses
func (c *client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	deadline := c.clock.After(c.cfg.ConfirmationTimeout)

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("transaction %s not confirmed within %s", hash.Hex(), c.cfg.ConfirmationTimeout)
		case <-c.clock.After(c.cfg.ReceiptPollInterval):
		}
	}
}

func (c *client) ScanOriginals(ctx context.Context, filter ScanFilter) ([]domain.OriginalRegistered, error) {
	if !c.RemixHubEnabled() {
		return nil, ErrRemixHubDisabled
	}

	from := filter.FromBlock
	if from == 0 {
		from = c.cfg.StartBlock
	}

	to := filter.ToBlock
	if to == 0 {
		latest, err := c.LatestBlock(ctx)
		if err != nil {
			return nil, err
		}
		to = latest
	}

	if from > to {
		return []domain.OriginalRegistered{}, nil
	}

	event := remixHubABI.Events["OriginalRegistered"]
	topics := [][]common.Hash{{event.ID}}
	if filter.Owner != nil {
		topics = append(topics, nil, []common.Hash{common.BytesToHash(common.HexToAddress(*filter.Owner).Bytes())})
	}

	logs, err := c.getLogsWithRetry(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{common.HexToAddress(c.cfg.RemixHubAddress)},
		Topics:    topics,
	}, c.cfg.LogBlockRange)
	if err != nil {
		return nil, fmt.Errorf("failed to get OriginalRegistered logs for range %d-%d: %w", from, to, err)
	}

	originals := make([]domain.OriginalRegistered, 0, len(logs))
	for _, l := range logs {
		original, err := parseOriginalRegistered(l)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping malformed OriginalRegistered log",
				zap.Error(err),
				zap.String("txHash", l.TxHash.Hex()),
				zap.Uint("logIndex", l.Index))
			continue
		}
		originals = append(originals, *original)
	}

	return originals, nil
}

// parseOriginalRegistered decodes a RemixHub OriginalRegistered log
func parseOriginalRegistered(l types.Log) (*domain.OriginalRegistered, error) {
	if len(l.Topics) < 3 {
		return nil, fmt.Errorf("expected 3 topics, got %d", len(l.Topics))
	}

	var data struct {
		PresetID uint16   `abi:"presetId"`
		CIDHash  [32]byte `abi:"cidHash"`
	}
	if err := remixHubABI.UnpackIntoInterface(&data, "OriginalRegistered", l.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack OriginalRegistered: %w", err)
	}

	return &domain.OriginalRegistered{
		IPID:        common.BigToAddress(l.Topics[1].Big()).Hex(),
		Owner:       common.BytesToAddress(l.Topics[2].Bytes()).Hex(),
		PresetID:    data.PresetID,
		CIDHash:     common.Hash(data.CIDHash).Hex(),
		TxHash:      l.TxHash.Hex(),
		BlockNumber: l.BlockNumber,
	}, nil
}

// getLogsWithRetry fetches logs for the whole query range in chunks of stepSize,
// halving the step when the node rejects a chunk as too large
func (c *client) getLogsWithRetry(ctx context.Context, query ethereum.FilterQuery, stepSize uint64) ([]types.Log, error) {
	currentStepSize := stepSize

	var allLogs []types.Log
	currentFrom := new(big.Int).Set(query.FromBlock)

	for currentFrom.Cmp(query.ToBlock) <= 0 {
		currentTo := new(big.Int).Add(currentFrom, new(big.Int).SetUint64(currentStepSize-1))
		if currentTo.Cmp(query.ToBlock) > 0 {
			currentTo.Set(query.ToBlock)
		}

		queryCopy := query
		queryCopy.FromBlock = new(big.Int).Set(currentFrom)
		queryCopy.ToBlock = new(big.Int).Set(currentTo)

		logs, err := c.eth.FilterLogs(ctx, queryCopy)
		if err == nil {
			allLogs = append(allLogs, logs...)
			currentFrom.SetUint64(currentTo.Uint64() + 1)
			continue
		}

		if !isTooManyResultsError(err) || currentStepSize == 1 {
			return nil, err
		}

		currentStepSize = currentStepSize / 2

		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("oldStepSize", currentStepSize*2),
			zap.Uint64("newStepSize", currentStepSize),
			zap.Uint64("fromBlock", currentFrom.Uint64()),
			zap.Uint64("toBlock", currentTo.Uint64()))
	}

	return allLogs, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum")
}
