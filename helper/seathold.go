package helper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultHoldTTL là thời hạn giữ ghế mặc định cho khách online.
const DefaultHoldTTL = 300 * time.Second

// CashHoldTTL giữ ghế rất ngắn cho luồng bán tại quầy: chỉ cần sống qua commit.
const CashHoldTTL = 30 * time.Second

var ErrHoldNotFound = errors.New("không có hold đang hoạt động cho ghế này")

// SeatHolder là hợp đồng giữ ghế tạm thời: Acquire phải là một thao tác
// set-if-absent-with-expiry nguyên tử duy nhất, không bao giờ là read-then-write.
type SeatHolder interface {
	Acquire(ctx context.Context, showtimeId, seatId uint, owner string, ttl time.Duration) (bool, error)
	// Extend làm mới TTL của một hold đang thuộc owner; false nếu hold
	// không còn hoặc thuộc người khác.
	Extend(ctx context.Context, showtimeId, seatId uint, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, showtimeId, seatId uint, owner string) error
	Owner(ctx context.Context, showtimeId, seatId uint) (string, error)
	// Owners tra owner của một lô ghế trong một round trip; ghế không có
	// hold thì vắng mặt trong map.
	Owners(ctx context.Context, showtimeId uint, seatIds []uint) (map[uint]string, error)
	RemainingTTL(ctx context.Context, showtimeId, seatId uint) (time.Duration, error)
}

// SeatHoldStore giữ ghế trên Redis. Key hold:{showtimeId}:{seatId} = owner,
// tự hết hạn theo TTL nên không cần worker dọn dẹp.
type SeatHoldStore struct {
	rdb *redis.Client
}

func NewSeatHoldStore(rdb *redis.Client) *SeatHoldStore {
	return &SeatHoldStore{rdb: rdb}
}

func holdKey(showtimeId, seatId uint) string {
	return fmt.Sprintf("hold:%d:%d", showtimeId, seatId)
}

// releaseScript xoá hold chỉ khi caller đúng là owner hiện tại.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript làm mới TTL chỉ khi caller đúng là owner hiện tại.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

func (s *SeatHoldStore) Acquire(ctx context.Context, showtimeId, seatId uint, owner string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, holdKey(showtimeId, seatId), owner, ttl).Result()
}

func (s *SeatHoldStore) Extend(ctx context.Context, showtimeId, seatId uint, owner string, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, s.rdb, []string{holdKey(showtimeId, seatId)}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release là no-op khi hold không tồn tại hoặc thuộc về người khác.
func (s *SeatHoldStore) Release(ctx context.Context, showtimeId, seatId uint, owner string) error {
	return releaseScript.Run(ctx, s.rdb, []string{holdKey(showtimeId, seatId)}, owner).Err()
}

func (s *SeatHoldStore) Owner(ctx context.Context, showtimeId, seatId uint) (string, error) {
	owner, err := s.rdb.Get(ctx, holdKey(showtimeId, seatId)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrHoldNotFound
	}
	return owner, err
}

func (s *SeatHoldStore) Owners(ctx context.Context, showtimeId uint, seatIds []uint) (map[uint]string, error) {
	owners := make(map[uint]string, len(seatIds))
	if len(seatIds) == 0 {
		return owners, nil
	}

	keys := make([]string, len(seatIds))
	for i, seatId := range seatIds {
		keys[i] = holdKey(showtimeId, seatId)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if owner, ok := v.(string); ok {
			owners[seatIds[i]] = owner
		}
	}
	return owners, nil
}

func (s *SeatHoldStore) RemainingTTL(ctx context.Context, showtimeId, seatId uint) (time.Duration, error) {
	d, err := s.rdb.PTTL(ctx, holdKey(showtimeId, seatId)).Result()
	if err != nil {
		return 0, err
	}
	if d <= 0 { // -2 không có key, -1 không có TTL
		return 0, ErrHoldNotFound
	}
	return d, nil
}

// HoldSeats giữ một lô ghế cho owner. Tất cả hoặc không gì cả: nếu có bất kỳ
// ghế nào đang bị người khác giữ, những ghế vừa lấy được trong chính lời gọi
// này được trả lại trước khi return, và danh sách trả về liệt kê ĐỦ các ghế
// xung đột chứ không dừng ở ghế đầu tiên.
//
// Ghế owner đã giữ sẵn từ một request trước chỉ được gia hạn TTL: batch hỏng
// không bao giờ được phá hold có từ trước.
func HoldSeats(ctx context.Context, holder SeatHolder, showtimeId uint, seatIds []uint, owner string, ttl time.Duration) ([]uint, error) {
	var newlyAcquired []uint
	var conflicts []uint

	rollback := func() {
		for _, id := range newlyAcquired {
			_ = holder.Release(ctx, showtimeId, id, owner)
		}
	}

	for _, seatId := range seatIds {
		ok, err := holder.Acquire(ctx, showtimeId, seatId, owner, ttl)
		if err != nil {
			rollback()
			return nil, err
		}
		if ok {
			newlyAcquired = append(newlyAcquired, seatId)
			continue
		}
		extended, err := holder.Extend(ctx, showtimeId, seatId, owner, ttl)
		if err != nil {
			rollback()
			return nil, err
		}
		if extended {
			continue
		}
		conflicts = append(conflicts, seatId)
	}

	if len(conflicts) > 0 {
		rollback()
		return conflicts, nil
	}
	return nil, nil
}

// ReleaseSeats trả một lô ghế; ghế không thuộc owner được bỏ qua.
func ReleaseSeats(ctx context.Context, holder SeatHolder, showtimeId uint, seatIds []uint, owner string) error {
	for _, seatId := range seatIds {
		if err := holder.Release(ctx, showtimeId, seatId, owner); err != nil {
			return err
		}
	}
	return nil
}
