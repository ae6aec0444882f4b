package schema

const (
	RawDexScreenerBucket = "raw-dexscreener"
	RawBirdeyeBucket     = "raw-birdeye"
)

// Buckets lists every namespace the raw payload archive keeps.
var Buckets = []string{
	RawDexScreenerBucket,
	RawBirdeyeBucket,
}
