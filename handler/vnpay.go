package handler

import (
	"cinema_booking/config"
	"cinema_booking/model"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"
)

// VNPay Service
type VNPay struct {
	Config model.VNPayConfig
}

func NewVNPay() *VNPay {
	appURL := config.Config("APP_URL")
	return &VNPay{
		Config: model.VNPayConfig{
			TmnCode:    config.Config("VNP_TMNCODE"),
			HashSecret: config.Config("VNP_HASHSECRET"),
			BaseURL:    config.Config("VNP_URL"),
			ReturnURL:  appURL + "/vnpay/return",
			IPNURL:     appURL + "/vnpay/ipn",
		},
	}
}

// Tạo Payment URL
func (v *VNPay) BuildPaymentUrl(req model.PaymentRequest) (string, error) {
	params := url.Values{}
	params.Add("vnp_Version", "2.1.0")
	params.Add("vnp_Command", "pay")
	params.Add("vnp_TmnCode", v.Config.TmnCode)
	params.Add("vnp_Amount", strconv.FormatInt(req.Amount*100, 10)) // VND * 100
	params.Add("vnp_CreateDate", time.Now().Format("20060102150405"))
	params.Add("vnp_CurrCode", "VND")
	params.Add("vnp_IpAddr", req.IPAddr)
	params.Add("vnp_Locale", "vn")
	params.Add("vnp_OrderInfo", url.QueryEscape(req.OrderInfo))
	params.Add("vnp_OrderType", "other")
	params.Add("vnp_ReturnUrl", v.Config.ReturnURL)
	params.Add("vnp_TxnRef", req.TxnRef)
	params.Add("vnp_ExpireDate", time.Now().Add(15*time.Minute).Format("20060102150405"))

	// Encode đã sort key theo alphabet — đúng thứ tự VNPay yêu cầu khi ký
	query := params.Encode()
	hash := v.generateHash(query)
	return v.Config.BaseURL + "?" + query + "&vnp_SecureHash=" + hash, nil
}

// Verify Return URL (callback trình duyệt)
func (v *VNPay) VerifyReturnUrl(query url.Values) model.PaymentResponse {
	secureHash := query.Get("vnp_SecureHash")
	query.Del("vnp_SecureHash")
	query.Del("vnp_SecureHashType")

	if secureHash != v.generateHash(query.Encode()) {
		return model.PaymentResponse{IsSuccess: false, Message: "Chữ ký không hợp lệ"}
	}

	if query.Get("vnp_ResponseCode") == "00" {
		amount, _ := strconv.ParseInt(query.Get("vnp_Amount"), 10, 64)
		return model.PaymentResponse{
			IsSuccess: true,
			TxnRef:    query.Get("vnp_TxnRef"),
			Amount:    amount / 100,
			Status:    "PAID",
		}
	}

	return model.PaymentResponse{
		IsSuccess: false,
		TxnRef:    query.Get("vnp_TxnRef"),
		Message:   "Thanh toán không thành công (mã " + query.Get("vnp_ResponseCode") + ")",
	}
}

// Verify IPN (server-to-server). Amount cũng được trả về để đối chiếu với
// số tiền đã chốt lúc tạo payment.
func (v *VNPay) VerifyIPN(query url.Values) model.PaymentResponse {
	secureHash := query.Get("vnp_SecureHash")
	query.Del("vnp_SecureHash")
	query.Del("vnp_SecureHashType")

	if secureHash != v.generateHash(query.Encode()) {
		return model.PaymentResponse{IsSuccess: false, Message: "Chữ ký IPN không hợp lệ"}
	}

	if query.Get("vnp_ResponseCode") == "00" {
		amount, _ := strconv.ParseInt(query.Get("vnp_Amount"), 10, 64)
		return model.PaymentResponse{
			IsSuccess: true,
			TxnRef:    query.Get("vnp_TxnRef"),
			Amount:    amount / 100,
			Status:    "PAID",
		}
	}

	return model.PaymentResponse{
		IsSuccess: false,
		TxnRef:    query.Get("vnp_TxnRef"),
		Message:   "IPN báo thất bại (mã " + query.Get("vnp_ResponseCode") + ")",
	}
}

func (v *VNPay) generateHash(data string) string {
	h := hmac.New(sha512.New, []byte(v.Config.HashSecret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
