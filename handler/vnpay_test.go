package handler

import (
	"cinema_booking/model"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVNPay() *VNPay {
	return &VNPay{Config: model.VNPayConfig{
		TmnCode:    "TESTCODE",
		HashSecret: "test-secret",
		BaseURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8002/vnpay/return",
	}}
}

func TestBuildPaymentUrlSigned(t *testing.T) {
	v := testVNPay()

	paymentUrl, err := v.BuildPaymentUrl(model.PaymentRequest{
		Amount:    150000,
		OrderInfo: "Thanh toan ve xem phim",
		TxnRef:    "PAY20260828120000abc",
		IPAddr:    "127.0.0.1",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(paymentUrl)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paymentUrl, v.Config.BaseURL))

	q := parsed.Query()
	assert.Equal(t, "15000000", q.Get("vnp_Amount")) // VND * 100
	assert.Equal(t, "PAY20260828120000abc", q.Get("vnp_TxnRef"))
	assert.Equal(t, "TESTCODE", q.Get("vnp_TmnCode"))
	assert.NotEmpty(t, q.Get("vnp_SecureHash"))
}

// URL vừa ký phải verify lại được bằng chính secret đó
func TestBuildThenVerifyRoundTrip(t *testing.T) {
	v := testVNPay()

	paymentUrl, err := v.BuildPaymentUrl(model.PaymentRequest{
		Amount: 150000,
		TxnRef: "PAY1",
		IPAddr: "127.0.0.1",
	})
	require.NoError(t, err)

	parsed, _ := url.Parse(paymentUrl)
	q := parsed.Query()
	// Gateway trả về thêm mã kết quả; giả lập thành công
	q.Set("vnp_ResponseCode", "00")
	q.Del("vnp_SecureHash")
	resigned := v.generateHash(q.Encode())
	q.Set("vnp_SecureHash", resigned)

	result := v.VerifyReturnUrl(q)
	assert.True(t, result.IsSuccess)
	assert.Equal(t, "PAY1", result.TxnRef)
	assert.Equal(t, int64(150000), result.Amount)
}

func TestVerifyReturnUrlRejectsTamperedAmount(t *testing.T) {
	v := testVNPay()

	q := url.Values{}
	q.Set("vnp_TxnRef", "PAY1")
	q.Set("vnp_Amount", "15000000")
	q.Set("vnp_ResponseCode", "00")
	q.Set("vnp_SecureHash", v.generateHash(q.Encode()))

	// Sửa số tiền sau khi đã ký
	q.Set("vnp_Amount", "100")

	result := v.VerifyReturnUrl(q)
	assert.False(t, result.IsSuccess)
}

func TestVerifyReturnUrlRejectsWrongSecret(t *testing.T) {
	v := testVNPay()

	q := url.Values{}
	q.Set("vnp_TxnRef", "PAY1")
	q.Set("vnp_ResponseCode", "00")
	attacker := &VNPay{Config: model.VNPayConfig{HashSecret: "guessed-secret"}}
	q.Set("vnp_SecureHash", attacker.generateHash(q.Encode()))

	result := v.VerifyReturnUrl(q)
	assert.False(t, result.IsSuccess)
}

func TestVerifyReturnUrlFailureCode(t *testing.T) {
	v := testVNPay()

	q := url.Values{}
	q.Set("vnp_TxnRef", "PAY1")
	q.Set("vnp_ResponseCode", "24") // khách huỷ giao dịch
	q.Set("vnp_SecureHash", v.generateHash(q.Encode()))

	result := v.VerifyReturnUrl(q)
	assert.False(t, result.IsSuccess)
	assert.Equal(t, "PAY1", result.TxnRef)
	assert.Contains(t, result.Message, "24")
}

func TestVerifyIPNReturnsAmount(t *testing.T) {
	v := testVNPay()

	q := url.Values{}
	q.Set("vnp_TxnRef", "PAY1")
	q.Set("vnp_Amount", "15000000")
	q.Set("vnp_ResponseCode", "00")
	q.Set("vnp_SecureHash", v.generateHash(q.Encode()))

	result := v.VerifyIPN(q)
	assert.True(t, result.IsSuccess)
	assert.Equal(t, int64(150000), result.Amount)
}
