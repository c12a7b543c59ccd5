package handler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// overlapDetector đếm số goroutine đang ở trong WriteJSON cùng lúc; websocket
// chỉ cho phép một writer tại một thời điểm.
type overlapDetector struct {
	inFlight int32
	overlaps int32
	writes   int32
}

func (d *overlapDetector) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&d.inFlight, 1) > 1 {
		atomic.AddInt32(&d.overlaps, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&d.inFlight, -1)
	atomic.AddInt32(&d.writes, 1)
	return nil
}

// Snapshot ban đầu và fanout chạy trên goroutine khác nhau; mutex của
// seatClient phải bảo đảm không bao giờ có hai WriteJSON chồng lên nhau.
func TestSeatClientSerializesWrites(t *testing.T) {
	detector := &overlapDetector{}
	client := &seatClient{conn: detector}

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, client.writeJSON(map[string]int{"seat": n}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(writers), atomic.LoadInt32(&detector.writes))
	assert.Zero(t, atomic.LoadInt32(&detector.overlaps))
}
