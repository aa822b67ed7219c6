package domain

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "bookclub:"

// VectorConfig holds review vectorization settings shared by ingestion and retrieval.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
	Field          string
}

// DefaultVectorConfig returns settings for the multi-qa-MiniLM-L6-cos-v1 sentence encoder.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "multi-qa-MiniLM-L6-cos-v1",
		Dimensions:     384,
		DistanceMetric: "cosine",
		Field:          "title_text_vector",
	}
}
