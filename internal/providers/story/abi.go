package story

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const ipMetadataTuple = `{"name":"ipMetadata","type":"tuple","components":[
	{"name":"ipMetadataURI","type":"string"},
	{"name":"ipMetadataHash","type":"bytes32"},
	{"name":"nftMetadataURI","type":"string"},
	{"name":"nftMetadataHash","type":"bytes32"}]}`

const licenseAttachmentWorkflowsJSON = `[{"type":"function","name":"mintAndRegisterIpAndAttachPILTerms","stateMutability":"nonpayable",
"inputs":[
	{"name":"spgNftContract","type":"address"},
	{"name":"recipient","type":"address"},
	` + ipMetadataTuple + `,
	{"name":"licenseTermsData","type":"tuple[]","components":[
		{"name":"terms","type":"tuple","components":[
			{"name":"transferable","type":"bool"},
			{"name":"royaltyPolicy","type":"address"},
			{"name":"defaultMintingFee","type":"uint256"},
			{"name":"expiration","type":"uint256"},
			{"name":"commercialUse","type":"bool"},
			{"name":"commercialAttribution","type":"bool"},
			{"name":"commercializerChecker","type":"address"},
			{"name":"commercializerCheckerData","type":"bytes"},
			{"name":"commercialRevShare","type":"uint32"},
			{"name":"commercialRevCeiling","type":"uint256"},
			{"name":"derivativesAllowed","type":"bool"},
			{"name":"derivativesAttribution","type":"bool"},
			{"name":"derivativesApproval","type":"bool"},
			{"name":"derivativesReciprocal","type":"bool"},
			{"name":"derivativeRevCeiling","type":"uint256"},
			{"name":"currency","type":"address"},
			{"name":"uri","type":"string"}]},
		{"name":"licensingConfig","type":"tuple","components":[
			{"name":"isSet","type":"bool"},
			{"name":"mintingFee","type":"uint256"},
			{"name":"licensingHook","type":"address"},
			{"name":"hookData","type":"bytes"},
			{"name":"commercialRevShare","type":"uint32"},
			{"name":"disabled","type":"bool"},
			{"name":"expectMinimumGroupRewardShare","type":"uint32"},
			{"name":"expectGroupRewardPool","type":"address"}]}]},
	{"name":"allowDuplicates","type":"bool"}],
"outputs":[
	{"name":"ipId","type":"address"},
	{"name":"tokenId","type":"uint256"},
	{"name":"licenseTermsIds","type":"uint256[]"}]}]`

const derivativeWorkflowsJSON = `[{"type":"function","name":"mintAndRegisterIpAndMakeDerivative","stateMutability":"nonpayable",
"inputs":[
	{"name":"spgNftContract","type":"address"},
	{"name":"derivData","type":"tuple","components":[
		{"name":"parentIpIds","type":"address[]"},
		{"name":"licenseTemplate","type":"address"},
		{"name":"licenseTermsIds","type":"uint256[]"},
		{"name":"royaltyContext","type":"bytes"},
		{"name":"maxMintingFee","type":"uint256"},
		{"name":"maxRts","type":"uint32"},
		{"name":"maxRevenueShare","type":"uint32"}]},
	` + ipMetadataTuple + `,
	{"name":"recipient","type":"address"},
	{"name":"allowDuplicates","type":"bool"}],
"outputs":[
	{"name":"ipId","type":"address"},
	{"name":"tokenId","type":"uint256"}]}]`

const licenseRegistryJSON = `[
{"type":"function","name":"getAttachedLicenseTermsCount","stateMutability":"view",
 "inputs":[{"name":"ipId","type":"address"}],
 "outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getAttachedLicenseTerms","stateMutability":"view",
 "inputs":[{"name":"ipId","type":"address"},{"name":"index","type":"uint256"}],
 "outputs":[{"name":"licenseTemplate","type":"address"},{"name":"licenseTermsId","type":"uint256"}]}]`

const ipAssetRegistryJSON = `[
{"type":"function","name":"isRegistered","stateMutability":"view",
 "inputs":[{"name":"id","type":"address"}],
 "outputs":[{"name":"","type":"bool"}]},
{"type":"event","name":"IPRegistered","anonymous":false,
 "inputs":[
	{"name":"ipId","type":"address","indexed":false},
	{"name":"chainId","type":"uint256","indexed":true},
	{"name":"tokenContract","type":"address","indexed":true},
	{"name":"tokenId","type":"uint256","indexed":true},
	{"name":"name","type":"string","indexed":false},
	{"name":"uri","type":"string","indexed":false},
	{"name":"registrationDate","type":"uint256","indexed":false}]}]`

const remixHubJSON = `[
{"type":"function","name":"registerOriginal","stateMutability":"nonpayable",
 "inputs":[{"name":"ipId","type":"uint256"},{"name":"cidHash","type":"bytes32"},{"name":"presetId","type":"uint16"}],
 "outputs":[]},
{"type":"event","name":"OriginalRegistered","anonymous":false,
 "inputs":[
	{"name":"ipId","type":"uint256","indexed":true},
	{"name":"owner","type":"address","indexed":true},
	{"name":"presetId","type":"uint16","indexed":false},
	{"name":"cidHash","type":"bytes32","indexed":false}]}]`

var (
	licenseAttachmentWorkflowsABI = mustParseABI(licenseAttachmentWorkflowsJSON)
	derivativeWorkflowsABI        = mustParseABI(derivativeWorkflowsJSON)
	licenseRegistryABI            = mustParseABI(licenseRegistryJSON)
	ipAssetRegistryABI            = mustParseABI(ipAssetRegistryJSON)
	remixHubABI                   = mustParseABI(remixHubJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ipMetadata mirrors WorkflowStructs.IPMetadata
type ipMetadata struct {
	IPMetadataURI   string   `abi:"ipMetadataURI"`
	IPMetadataHash  [32]byte `abi:"ipMetadataHash"`
	NFTMetadataURI  string   `abi:"nftMetadataURI"`
	NFTMetadataHash [32]byte `abi:"nftMetadataHash"`
}

// pilTerms mirrors PILTerms of the programmable IP license template
type pilTerms struct {
	Transferable              bool           `abi:"transferable"`
	RoyaltyPolicy             common.Address `abi:"royaltyPolicy"`
	DefaultMintingFee         *big.Int       `abi:"defaultMintingFee"`
	Expiration                *big.Int       `abi:"expiration"`
	CommercialUse             bool           `abi:"commercialUse"`
	CommercialAttribution     bool           `abi:"commercialAttribution"`
	CommercializerChecker     common.Address `abi:"commercializerChecker"`
	CommercializerCheckerData []byte         `abi:"commercializerCheckerData"`
	CommercialRevShare        uint32         `abi:"commercialRevShare"`
	CommercialRevCeiling      *big.Int       `abi:"commercialRevCeiling"`
	DerivativesAllowed        bool           `abi:"derivativesAllowed"`
	DerivativesAttribution    bool           `abi:"derivativesAttribution"`
	DerivativesApproval       bool           `abi:"derivativesApproval"`
	DerivativesReciprocal     bool           `abi:"derivativesReciprocal"`
	DerivativeRevCeiling      *big.Int       `abi:"derivativeRevCeiling"`
	Currency                  common.Address `abi:"currency"`
	URI                       string         `abi:"uri"`
}

// licensingConfig mirrors Licensing.LicensingConfig
type licensingConfig struct {
	IsSet                         bool           `abi:"isSet"`
	MintingFee                    *big.Int       `abi:"mintingFee"`
	LicensingHook                 common.Address `abi:"licensingHook"`
	HookData                      []byte         `abi:"hookData"`
	CommercialRevShare            uint32         `abi:"commercialRevShare"`
	Disabled                      bool           `abi:"disabled"`
	ExpectMinimumGroupRewardShare uint32         `abi:"expectMinimumGroupRewardShare"`
	ExpectGroupRewardPool         common.Address `abi:"expectGroupRewardPool"`
}

// licenseTermsData mirrors WorkflowStructs.LicenseTermsData
type licenseTermsData struct {
	Terms           pilTerms        `abi:"terms"`
	LicensingConfig licensingConfig `abi:"licensingConfig"`
}

// makeDerivative mirrors WorkflowStructs.MakeDerivative
type makeDerivative struct {
	ParentIPIDs     []common.Address `abi:"parentIpIds"`
	LicenseTemplate common.Address   `abi:"licenseTemplate"`
	LicenseTermsIDs []*big.Int       `abi:"licenseTermsIds"`
	RoyaltyContext  []byte           `abi:"royaltyContext"`
	MaxMintingFee   *big.Int         `abi:"maxMintingFee"`
	MaxRts          uint32           `abi:"maxRts"`
	MaxRevenueShare uint32           `abi:"maxRevenueShare"`
}
