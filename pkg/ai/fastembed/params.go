package fastembed

// NewFastEmbedderParams configures a FastEmbedder.
//
// Model defaults to sentence-transformers/all-MiniLM-L6-v2.
// CacheDir is where model files are downloaded to.
// MaxLength is the maximum input sequence length in tokens.
type NewFastEmbedderParams struct {
	Model     string
	CacheDir  string
	MaxLength int
}
