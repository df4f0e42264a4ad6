package safebuf

import (
	"testing"

	"github.com/danmuck/safebuf/bytebuf"
)

var benchInput = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

func BenchmarkTakeSlice(b *testing.B) {
	out := make([]byte, 6)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := bytebuf.New()
		buf.Extend(benchInput)
		if err := TakeSlice(buf, out); err != nil {
			b.Fatal(err)
		}
		buf.Release()
	}
}

func BenchmarkTakeBytes(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := bytebuf.New()
		buf.Extend(benchInput)
		if _, err := TakeBytes(buf, 6); err != nil {
			b.Fatal(err)
		}
		buf.Release()
	}
}

func BenchmarkGetUint64BE(b *testing.B) {
	buf := bytebuf.FromBytes(benchInput)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := GetUint64BE(buf.Clone()); err != nil {
			b.Fatal(err)
		}
	}
}
