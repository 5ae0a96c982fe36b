// Package cluster groups embedding vectors into proposed categories.
// DBSCAN over cosine distance is the primary strategy; bounded-k
// k-means is the fallback when density clustering finds too little
// structure.
package cluster

import "math"

// Noise is the label assigned to points that fit no dense cluster.
const Noise = -1

// DBSCANParams controls density-based clustering.
type DBSCANParams struct {
	// Eps is the cosine-distance neighborhood radius.
	Eps float64
	// MinPoints is the minimum neighborhood size for a core point.
	MinPoints int
}

// DBSCANParamsFor derives parameters from the collection size, tuned so
// clusters land in the handful-to-15-members range.
func DBSCANParamsFor(n int) DBSCANParams {
	minPts := n / 50
	if minPts < 3 {
		minPts = 3
	}
	if minPts > 15 {
		minPts = 15
	}
	return DBSCANParams{Eps: 0.25, MinPoints: minPts}
}

// DBSCAN labels each vector with a cluster id starting at 0, or Noise.
func DBSCAN(vectors [][]float32, params DBSCANParams) []int {
	n := len(vectors)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	if n == 0 {
		return labels
	}

	visited := make([]bool, n)
	cluster := 0

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(vectors, i, params.Eps)
		if len(neighbors) < params.MinPoints {
			continue
		}

		labels[i] = cluster
		// Seed set expands as new core points are discovered.
		for qi := 0; qi < len(neighbors); qi++ {
			j := neighbors[qi]
			if !visited[j] {
				visited[j] = true
				jNeighbors := regionQuery(vectors, j, params.Eps)
				if len(jNeighbors) >= params.MinPoints {
					neighbors = append(neighbors, jNeighbors...)
				}
			}
			if labels[j] == Noise {
				labels[j] = cluster
			}
		}
		cluster++
	}

	return labels
}

// CountClusters returns the number of distinct non-noise labels.
func CountClusters(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		if l != Noise {
			seen[l] = true
		}
	}
	return len(seen)
}

func regionQuery(vectors [][]float32, i int, eps float64) []int {
	var neighbors []int
	for j := range vectors {
		if cosineDistance(vectors[i], vectors[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

func cosineDistance(a, b []float32) float64 {
	return 1.0 - cosineSimilarity(a, b)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
