package rope

import (
	"math/rand"
	"strings"
	"testing"
)

func generateText(size int) string {
	words := []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog", "日本", "\n"}
	rng := rand.New(rand.NewSource(1))
	var sb strings.Builder
	sb.Grow(size)
	for sb.Len() < size {
		sb.WriteString(words[rng.Intn(len(words))])
		sb.WriteByte(' ')
	}
	return sb.String()[:size]
}

func BenchmarkFromString(b *testing.B) {
	for _, size := range []int{1 << 10, 1 << 16, 1 << 20} {
		text := generateText(size)
		b.Run(byteSize(size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				_ = FromString(text)
			}
		})
	}
}

func BenchmarkInsertMiddle(b *testing.B) {
	r := FromString(generateText(1 << 20))
	mid := r.Len() / 2
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Insert(mid, "x")
	}
}

func BenchmarkReplaceRandom(b *testing.B) {
	r := FromString(generateText(1 << 20))
	rng := rand.New(rand.NewSource(2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		at := ByteOffset(rng.Int63n(int64(r.Len())))
		r = r.Replace(at, at+1, "y")
	}
}

func BenchmarkSlice(b *testing.B) {
	r := FromString(generateText(1 << 20))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Slice(500000, 500080)
	}
}

func BenchmarkUTF16Len(b *testing.B) {
	r := FromString(generateText(1 << 20))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.UTF16Len(0, 700000)
	}
}

func byteSize(n int) string {
	switch {
	case n >= 1<<20:
		return "1MB"
	case n >= 1<<16:
		return "64KB"
	default:
		return "1KB"
	}
}
