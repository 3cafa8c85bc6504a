package domain

const (
	// Gateway constants
	DEFAULT_IPFS_GATEWAY = "https://ipfs.io"

	// Ledger constants
	STORY_AENEID_CHAIN_ID = 1315

	// DESIGN_METADATA_TYPE is the type tag written into pinned design metadata
	DESIGN_METADATA_TYPE = "figma-design"

	// DEFAULT_PRESET_ID is the RemixHub license preset used for originals
	DEFAULT_PRESET_ID = 1
)
