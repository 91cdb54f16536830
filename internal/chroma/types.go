package chroma

// Metadata keys recognized by the Chroma server.
const (
	SpaceMetadataKey    = "hnsw:space"
	ProviderMetadataKey = "embedding_provider"
	ModelMetadataKey    = "embedding_model"
)

// Distance metrics supported for nearest-neighbor ranking.
const (
	SpaceCosine = "cosine"
	SpaceL2     = "l2"
	SpaceIP     = "ip"
)

// DefaultSpace is what the server uses when no metric is configured.
const DefaultSpace = SpaceL2

// ValidSpace reports whether s is a supported distance metric.
func ValidSpace(s string) bool {
	switch s {
	case SpaceCosine, SpaceL2, SpaceIP:
		return true
	}
	return false
}

// Collection is a named container of vector records, owned entirely by the
// remote service. The ID is a server-assigned UUID used for record-level
// endpoints.
type Collection struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Tenant   string         `json:"tenant,omitempty"`
	Database string         `json:"database,omitempty"`
}

// Space returns the distance metric configured for the collection,
// falling back to the server default when the metadata key is absent.
func (c *Collection) Space() string {
	if c.Metadata != nil {
		if s, ok := c.Metadata[SpaceMetadataKey].(string); ok && s != "" {
			return s
		}
	}
	return DefaultSpace
}

// GetResult holds records fetched without a query. The slices are parallel:
// Documents[i] and Metadatas[i] belong to IDs[i].
type GetResult struct {
	IDs        []string         `json:"ids"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
	Embeddings [][]float64      `json:"embeddings"`
}

// QueryResult holds nearest-neighbor matches, one group per query text,
// ordered by the service (ascending distance within a group).
type QueryResult struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}
