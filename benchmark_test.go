package circular_buffer_go

import (
	"fmt"
	"sync"
	"testing"
)

func producer(buffer *LockingRingBuffer, iterations int, data []byte, wg *sync.WaitGroup, totalBytes *int) {
	defer wg.Done()
	defer buffer.CloseWrite()

	for i := 0; i < iterations; i++ {
		n, err := buffer.Write(data)
		if err != nil {
			return
		}

		*totalBytes += n
	}
}

func consumer(buffer *LockingRingBuffer, dataSize int, wg *sync.WaitGroup, totalBytes *int) {
	defer wg.Done()

	p := make([]byte, dataSize)

	for {
		n, err := buffer.Read(p)
		*totalBytes += n
		if err != nil {
			return
		}
	}
}

func BenchmarkLockingRingBuffer(b *testing.B) {
	const dataSize = 1024
	const bufferSize = 1 << 20

	for _, model := range []Model{CapacityPlusOne, FullUtilization} {
		b.Run(model.String(), func(b *testing.B) {
			buffer := NewLockingRingBuffer(New(bufferSize, WithModel(model)))
			data := make([]byte, dataSize)

			var wg sync.WaitGroup
			var bytesWritten, bytesRead int

			b.SetBytes(dataSize)
			b.ResetTimer()

			wg.Add(2)
			go producer(buffer, b.N, data, &wg, &bytesWritten)
			go consumer(buffer, dataSize, &wg, &bytesRead)
			wg.Wait()

			if bytesWritten != bytesRead {
				b.Fatalf("wrote %d bytes, read %d", bytesWritten, bytesRead)
			}
		})
	}
}

// benchmarkModels runs fn against both index models through the shared
// interface.
func benchmarkModels(b *testing.B, capacity int, fn func(b *testing.B, buffer RingBufferInterface)) {
	for _, model := range []Model{CapacityPlusOne, FullUtilization} {
		b.Run(fmt.Sprintf("%s/%d", model, capacity), func(b *testing.B) {
			fn(b, New(capacity, WithModel(model)))
		})
	}
}

func BenchmarkPutGetByte(b *testing.B) {
	benchmarkModels(b, 63, func(b *testing.B, buffer RingBufferInterface) {
		var c byte
		for i := 0; i < b.N; i++ {
			buffer.PutByte(byte(i))
			buffer.GetByte(&c)
		}
	})
}

func BenchmarkBulkTransfer(b *testing.B) {
	for _, chunk := range []int{16, 256, 4096} {
		benchmarkModels(b, 8191, func(b *testing.B, buffer RingBufferInterface) {
			in := make([]byte, chunk)
			out := make([]byte, chunk)

			b.SetBytes(int64(chunk))
			for i := 0; i < b.N; i++ {
				buffer.Put(in, true)
				buffer.Get(out)
			}
		})
	}
}

func BenchmarkDelimitedMessages(b *testing.B) {
	message := []byte("$GPGGA,123519,4807.038,N,01131.000,E*47\n")
	buffer := NewDelimitedBuffer(1023, '\n')
	out := make([]byte, len(message))

	b.SetBytes(int64(len(message)))
	for i := 0; i < b.N; i++ {
		buffer.Put(message, true)
		buffer.GetMessage(out)
	}
}
