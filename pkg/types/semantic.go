// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ModelID identifies an embedding model. Vectors from different models are
// never mixed, and cache entries are namespaced by the full identity.
type ModelID struct {
	Provider   string `json:"provider" yaml:"provider"`
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version" yaml:"version"`
	Dimensions int    `json:"dimensions" yaml:"dimensions"`
}

// String returns "provider/name@version:dims".
func (m ModelID) String() string {
	return fmt.Sprintf("%s/%s@%s:%d", m.Provider, m.Name, m.Version, m.Dimensions)
}

// EmbeddingSet holds one vector per input text, in input order.
type EmbeddingSet struct {
	Model   ModelID     `json:"model" yaml:"model"`
	Vectors [][]float32 `json:"-" yaml:"-"`

	// Requested is the number of input texts.
	Requested int `json:"requested" yaml:"requested"`

	// Complete is false when generation stopped early (cancellation).
	// Vectors then covers a prefix of the input.
	Complete bool `json:"complete" yaml:"complete"`

	// CacheHits counts vectors served from the embedding cache.
	CacheHits int `json:"cache_hits" yaml:"cache_hits"`
}

// Len returns the number of vectors.
func (s EmbeddingSet) Len() int {
	return len(s.Vectors)
}

// ClusterMethod identifies a clustering algorithm.
type ClusterMethod string

const (
	ClusterKMeans ClusterMethod = "kmeans"
	ClusterDBSCAN ClusterMethod = "dbscan"
)

// NoiseLabel is the cluster label DBSCAN assigns to noise points.
const NoiseLabel = -1

// ClusterParams are the parameters of one clustering call.
type ClusterParams struct {
	Method ClusterMethod `json:"method" yaml:"method"`

	// NClusters is the k-means target cluster count. Must be > 0.
	NClusters int `json:"n_clusters,omitempty" yaml:"n_clusters,omitempty"`

	// Eps is the DBSCAN neighbourhood radius. Must be > 0.
	Eps float64 `json:"eps,omitempty" yaml:"eps,omitempty"`

	// MinSamples is the DBSCAN core point threshold. Must be > 0.
	MinSamples int `json:"min_samples,omitempty" yaml:"min_samples,omitempty"`

	RandomState int64 `json:"random_state" yaml:"random_state"`

	// NInit is the number of k-means restarts; the lowest inertia wins.
	NInit int `json:"n_init,omitempty" yaml:"n_init,omitempty"`

	MaxIter int `json:"max_iter,omitempty" yaml:"max_iter,omitempty"`
}

// ClusterStats describes one cluster.
type ClusterStats struct {
	Label        int     `json:"label" yaml:"label"`
	Size         int     `json:"size" yaml:"size"`
	MeanDistance float64 `json:"mean_distance" yaml:"mean_distance"`
	MaxDistance  float64 `json:"max_distance" yaml:"max_distance"`
	MinDistance  float64 `json:"min_distance" yaml:"min_distance"`
	StdDistance  float64 `json:"std_distance" yaml:"std_distance"`
	CentroidNorm float64 `json:"centroid_norm" yaml:"centroid_norm"`
}

// ClusterResult is the outcome of one clustering call. Labels is the only
// label field; it is aligned with the clustered vectors.
type ClusterResult struct {
	Method ClusterMethod `json:"method" yaml:"method"`
	Labels []int         `json:"labels" yaml:"labels"`

	// NumClusters excludes the noise label.
	NumClusters int `json:"num_clusters" yaml:"num_clusters"`

	// Noise counts points labeled NoiseLabel.
	Noise int `json:"noise" yaml:"noise"`

	// Silhouette is in [-1,1]; nil when fewer than 2 clusters exist.
	Silhouette *float64 `json:"silhouette,omitempty" yaml:"silhouette,omitempty"`

	// CalinskiHarabasz is nil when fewer than 2 clusters exist.
	CalinskiHarabasz *float64 `json:"calinski_harabasz,omitempty" yaml:"calinski_harabasz,omitempty"`

	// Inertia is the k-means within-cluster sum of squares.
	Inertia float64 `json:"inertia,omitempty" yaml:"inertia,omitempty"`

	Clusters []ClusterStats `json:"clusters" yaml:"clusters"`

	// Params records the parameters actually used (k may be capped).
	Params ClusterParams `json:"params" yaml:"params"`
}

// ClusterTopic summarizes the publications of one cluster.
type ClusterTopic struct {
	Label     int      `json:"label" yaml:"label"`
	Size      int      `json:"size" yaml:"size"`
	TopTerms  []string `json:"top_terms" yaml:"top_terms"`
	FirstYear int      `json:"first_year,omitempty" yaml:"first_year,omitempty"`
	LastYear  int      `json:"last_year,omitempty" yaml:"last_year,omitempty"`
	Titles    []string `json:"titles" yaml:"titles"`
}

// Projection is a 2D or 3D display-only projection of embedding vectors.
type Projection struct {
	Method     string      `json:"method" yaml:"method"`
	Components int         `json:"components" yaml:"components"`
	Coords     [][]float64 `json:"coords" yaml:"coords"`
}
