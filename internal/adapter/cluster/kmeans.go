package cluster

import (
	"math"
	"math/rand"
)

const (
	kmeansSeed          = 42
	kmeansMaxIterations = 100
)

// KFor picks a cluster count from the collection size: 3-8 for large
// collections, fewer for small ones, never more than the point count.
func KFor(n int) int {
	var k int
	if n < 20 {
		k = n / 5
		if k < 2 {
			k = 2
		}
	} else {
		k = n / 100
		if k < 3 {
			k = 3
		}
		if k > 8 {
			k = 8
		}
	}
	if k > n {
		k = n
	}
	return k
}

// KMeans partitions the vectors into k clusters and returns a label per
// vector. It always succeeds for non-empty input: every point gets a
// label in [0, k).
func KMeans(vectors [][]float32, k int) []int {
	n := len(vectors)
	labels := make([]int, n)
	if n == 0 || k <= 1 {
		return labels
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(kmeansSeed))
	centroids := initCentroids(vectors, k, rng)

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := math.MaxFloat64
			for c, centroid := range centroids {
				d := squaredDistance(v, centroid)
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; an emptied cluster keeps its previous
		// position.
		dim := len(vectors[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, v := range vectors {
			c := labels[i]
			counts[c]++
			for d, x := range v {
				sums[c][d] += float64(x)
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < dim; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	return labels
}

// initCentroids uses k-means++ style seeding: the first centroid is
// random, each next one is the point farthest from its nearest chosen
// centroid.
func initCentroids(vectors [][]float32, k int, rng *rand.Rand) [][]float64 {
	n := len(vectors)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, toFloat64(vectors[rng.Intn(n)]))

	for len(centroids) < k {
		farIdx := 0
		farDist := -1.0
		for i, v := range vectors {
			nearest := math.MaxFloat64
			for _, c := range centroids {
				if d := squaredDistance(v, c); d < nearest {
					nearest = d
				}
			}
			if nearest > farDist {
				farDist = nearest
				farIdx = i
			}
		}
		centroids = append(centroids, toFloat64(vectors[farIdx]))
	}
	return centroids
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func squaredDistance(a []float32, b []float64) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - b[i]
		sum += d * d
	}
	return sum
}
