package story

var (
	IPAssetRegistryABI = ipAssetRegistryABI
	RemixHubABI        = remixHubABI
	LicenseRegistryABI = licenseRegistryABI
)
