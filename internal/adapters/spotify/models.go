package spotify

// FeaturesFromPlaylists as a features reference selects every track of the
// playlists loaded earlier by the same client.
const FeaturesFromPlaylists = "playlists"

// maxFeatureIDs is the API limit of IDs per audio-features request.
const maxFeatureIDs = 100

// audioFeaturesPath and playlistPath are relative to the base URL.
const (
	audioFeaturesPath = "/audio-features"
	playlistPath      = "/playlists/"
)
