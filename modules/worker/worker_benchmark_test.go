package worker

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"testing"
)

func Benchmark_Map_SHA256(b *testing.B) {
	payloads := make([][]byte, 256)
	for i := range payloads {
		payloads[i] = make([]byte, 1024)
		_, _ = rand.Read(payloads[i])
	}

	hash := func(_ context.Context, p []byte) ([32]byte, error) {
		return sha256.Sum256(p), nil
	}

	for _, size := range []int{1, 4, 16, 64} {
		b.Run(fmt.Sprintf("pool_size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			ctx := context.Background()
			for b.Loop() {
				Map(ctx, size, payloads, hash)
			}
		})
	}
}
