package helper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHold struct {
	owner string
	ttl   time.Duration
}

// fakeHolder mô phỏng SeatHoldStore trong bộ nhớ, đủ cho logic batch.
type fakeHolder struct {
	mu    sync.Mutex
	holds map[string]fakeHold
}

func newFakeHolder() *fakeHolder {
	return &fakeHolder{holds: make(map[string]fakeHold)}
}

func (f *fakeHolder) key(showtimeId, seatId uint) string {
	return fmt.Sprintf("%d:%d", showtimeId, seatId)
}

func (f *fakeHolder) Acquire(_ context.Context, showtimeId, seatId uint, owner string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(showtimeId, seatId)
	if _, exists := f.holds[k]; exists {
		return false, nil
	}
	f.holds[k] = fakeHold{owner: owner, ttl: ttl}
	return true, nil
}

func (f *fakeHolder) Extend(_ context.Context, showtimeId, seatId uint, owner string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(showtimeId, seatId)
	h, exists := f.holds[k]
	if !exists || h.owner != owner {
		return false, nil
	}
	f.holds[k] = fakeHold{owner: owner, ttl: ttl}
	return true, nil
}

func (f *fakeHolder) Release(_ context.Context, showtimeId, seatId uint, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(showtimeId, seatId)
	if f.holds[k].owner == owner {
		delete(f.holds, k)
	}
	return nil
}

func (f *fakeHolder) Owner(_ context.Context, showtimeId, seatId uint) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holds[f.key(showtimeId, seatId)]
	if !ok {
		return "", ErrHoldNotFound
	}
	return h.owner, nil
}

func (f *fakeHolder) Owners(_ context.Context, showtimeId uint, seatIds []uint) (map[uint]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owners := make(map[uint]string)
	for _, seatId := range seatIds {
		if h, ok := f.holds[f.key(showtimeId, seatId)]; ok {
			owners[seatId] = h.owner
		}
	}
	return owners, nil
}

func (f *fakeHolder) RemainingTTL(_ context.Context, showtimeId, seatId uint) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holds[f.key(showtimeId, seatId)]
	if !ok {
		return 0, ErrHoldNotFound
	}
	return h.ttl, nil
}

func TestHoldSeatsAllAvailable(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	conflicts, err := HoldSeats(ctx, holder, 1, []uint{10, 11, 12}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	for _, seatId := range []uint{10, 11, 12} {
		owner, err := holder.Owner(ctx, 1, seatId)
		require.NoError(t, err)
		assert.Equal(t, "USER_1", owner)
	}
}

func TestHoldSeatsAllOrNothing(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	// Người khác giữ sẵn ghế 11 và 13
	_, err := HoldSeats(ctx, holder, 1, []uint{11, 13}, "USER_2", DefaultHoldTTL)
	require.NoError(t, err)

	conflicts, err := HoldSeats(ctx, holder, 1, []uint{10, 11, 12, 13}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)

	// Trả về ĐỦ danh sách ghế xung đột, không dừng ở ghế đầu tiên
	assert.ElementsMatch(t, []uint{11, 13}, conflicts)

	// Ghế lấy được giữa chừng phải được nhả lại
	_, err = holder.Owner(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrHoldNotFound)
	_, err = holder.Owner(ctx, 1, 12)
	assert.ErrorIs(t, err, ErrHoldNotFound)

	// Hold của người khác không bị đụng tới
	owner, err := holder.Owner(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, "USER_2", owner)
}

// Batch hỏng chỉ được nhả những ghế lấy mới trong chính lời gọi đó; hold có
// từ request trước của cùng owner phải còn nguyên.
func TestHoldSeatsConflictKeepsPreexistingHolds(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	// USER_1 đã giữ ghế 10 từ trước, USER_2 giữ ghế 11
	_, err := HoldSeats(ctx, holder, 1, []uint{10}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)
	_, err = HoldSeats(ctx, holder, 1, []uint{11}, "USER_2", DefaultHoldTTL)
	require.NoError(t, err)

	// USER_1 thêm ghế 11 (xung đột) và 12 vào batch
	conflicts, err := HoldSeats(ctx, holder, 1, []uint{10, 11, 12}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, conflicts)

	// Ghế 10 vẫn thuộc USER_1 dù batch bị từ chối
	owner, err := holder.Owner(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "USER_1", owner)

	// Ghế 12 lấy mới trong batch này thì phải được nhả
	_, err = holder.Owner(ctx, 1, 12)
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestHoldSeatsReacquireExtendsTTL(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	_, err := HoldSeats(ctx, holder, 1, []uint{10, 11}, "USER_1", 30*time.Second)
	require.NoError(t, err)

	// Giữ lại chính ghế mình đang giữ: không xung đột, TTL được làm mới
	conflicts, err := HoldSeats(ctx, holder, 1, []uint{10, 11, 12}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	for _, seatId := range []uint{10, 11} {
		ttl, err := holder.RemainingTTL(ctx, 1, seatId)
		require.NoError(t, err)
		assert.Equal(t, DefaultHoldTTL, ttl)
	}
}

func TestHoldSeatsDifferentShowtimesIndependent(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	_, err := HoldSeats(ctx, holder, 1, []uint{10}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)

	// Cùng seatId nhưng suất khác là hold độc lập
	conflicts, err := HoldSeats(ctx, holder, 2, []uint{10}, "USER_2", DefaultHoldTTL)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestHoldSeatsConcurrentSingleWinner(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	const contenders = 20
	var wg sync.WaitGroup
	winners := make(chan string, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			owner := fmt.Sprintf("USER_%d", n)
			conflicts, err := HoldSeats(ctx, holder, 1, []uint{42}, owner, DefaultHoldTTL)
			if err == nil && len(conflicts) == 0 {
				winners <- owner
			}
		}(i)
	}
	wg.Wait()
	close(winners)

	var won []string
	for w := range winners {
		won = append(won, w)
	}
	require.Len(t, won, 1)

	owner, err := holder.Owner(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, won[0], owner)
}

func TestOwnersBatch(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	_, err := HoldSeats(ctx, holder, 1, []uint{10, 12}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)

	owners, err := holder.Owners(ctx, 1, []uint{10, 11, 12})
	require.NoError(t, err)

	// Ghế không có hold vắng mặt trong map
	assert.Equal(t, map[uint]string{10: "USER_1", 12: "USER_1"}, owners)
}

func TestReleaseSeatsIgnoresForeignHolds(t *testing.T) {
	holder := newFakeHolder()
	ctx := context.Background()

	_, err := HoldSeats(ctx, holder, 1, []uint{10}, "USER_1", DefaultHoldTTL)
	require.NoError(t, err)
	_, err = HoldSeats(ctx, holder, 1, []uint{11}, "USER_2", DefaultHoldTTL)
	require.NoError(t, err)

	require.NoError(t, ReleaseSeats(ctx, holder, 1, []uint{10, 11}, "USER_1"))

	_, err = holder.Owner(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrHoldNotFound)

	owner, err := holder.Owner(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, "USER_2", owner)
}
