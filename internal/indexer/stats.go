package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ChunkerVersion is the version identifier for the chunker implementation.
// Update this when chunking logic changes significantly.
const ChunkerVersion = "v2.0-sentence"

// BuildStats contains statistics about one index build.
type BuildStats struct {
	// Collection is the vector collection the build wrote to.
	Collection string `json:"collection"`
	// DocsProcessed is the total number of documents processed.
	DocsProcessed int `json:"docs_processed"`
	// DocsWith0Chunks is the number of documents that produced 0 chunks.
	DocsWith0Chunks int `json:"docs_with_0_chunks"`
	// ChunksEmbedded is the number of chunks embedded and stored.
	ChunksEmbedded int `json:"chunks_embedded"`
	// ChunkWordStats contains statistics about word counts per chunk.
	ChunkWordStats ChunkWordStats `json:"chunk_word_stats"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
	// IndexVersion is a hash identifying the index build (chunker + embedding model + vector size).
	IndexVersion string `json:"index_version"`
	// Duration is how long the build took.
	Duration time.Duration `json:"duration"`
}

// ChunkWordStats contains statistics about word counts in chunks.
type ChunkWordStats struct {
	// Min is the minimum word count across all chunks.
	Min int `json:"min"`
	// Max is the maximum word count across all chunks.
	Max int `json:"max"`
	// Mean is the mean word count across all chunks.
	Mean float64 `json:"mean"`
	// P95 is the 95th percentile word count.
	P95 int `json:"p95"`
}

// statsCollector accumulates BuildStats while a build runs.
type statsCollector struct {
	stats      BuildStats
	wordCounts []int
}

func newStatsCollector(collection string) *statsCollector {
	return &statsCollector{stats: BuildStats{
		Collection:     collection,
		ChunkerVersion: ChunkerVersion,
	}}
}

func (c *statsCollector) addDocument(chunks []Chunk) {
	c.stats.DocsProcessed++
	if len(chunks) == 0 {
		c.stats.DocsWith0Chunks++
	}
	for _, chunk := range chunks {
		c.wordCounts = append(c.wordCounts, len(strings.Fields(chunk.Text)))
	}
}

func (c *statsCollector) finish(embedded int, embeddingModel string, vectorSize int, duration time.Duration) BuildStats {
	c.stats.ChunksEmbedded = embedded
	c.stats.ChunkWordStats = computeWordStats(c.wordCounts)
	c.stats.IndexVersion = indexVersion(embeddingModel, vectorSize)
	c.stats.Duration = duration
	return c.stats
}

// indexVersion hashes everything that changes the vectors produced for a corpus.
func indexVersion(embeddingModel string, vectorSize int) string {
	input := fmt.Sprintf("%s|%s|vectorSize=%d", ChunkerVersion, embeddingModel, vectorSize)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16] // 16 hex chars = 64 bits
}

// computeWordStats computes min, max, mean, and p95 from word counts.
func computeWordStats(counts []int) ChunkWordStats {
	if len(counts) == 0 {
		return ChunkWordStats{}
	}

	// Sort for percentile calculation
	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range counts {
		sum += count
	}
	mean := float64(sum) / float64(len(counts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkWordStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
