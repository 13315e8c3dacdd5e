// Copyright (c) 2026 HKSD Tech. All rights reserved.

package sms

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hksd-tech/hksd-api/internal/platform/constants"
)

// # Aliyun Gateway

const (
	aliyunEndpoint   = "https://dysmsapi.aliyuncs.com/"
	aliyunAPIVersion = "2017-05-25"
	aliyunRegion     = "cn-hangzhou"
)

// AliyunSender delivers codes through the Aliyun Dysms RPC gateway.
//
// # Protocol
//
// The gateway uses the classic RPC signature scheme: all request parameters
// are sorted, percent-encoded, and signed with HMAC-SHA1 using the access key
// secret. Responses carry Code "OK" on success.
type AliyunSender struct {
	accessKeyID     string
	accessKeySecret string
	signName        string
	templateCode    string
	httpClient      *http.Client
}

// NewAliyunSender creates a sender bound to one SMS template.
func NewAliyunSender(accessKeyID, accessKeySecret, signName, templateCode string) *AliyunSender {
	return &AliyunSender{
		accessKeyID:     accessKeyID,
		accessKeySecret: accessKeySecret,
		signName:        signName,
		templateCode:    templateCode,
		httpClient: &http.Client{
			Timeout: constants.CollaboratorTimeout,
		},
	}
}

// aliyunResponse is the subset of the gateway response we act on.
type aliyunResponse struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
	BizID   string `json:"BizId"`
}

/*
SendCode delivers the code to the phone through the gateway.

Description: Builds the signed SendSms request, executes it within the
collaborator timeout, and maps a non-OK gateway code to an error.

Parameters:
  - ctx: context.Context
  - phoneNumber: string (normalized 11-digit form)
  - code: string

Returns:
  - error: Transport failures or gateway rejections
*/
func (sender *AliyunSender) SendCode(ctx context.Context, phoneNumber, code string) error {
	templateParam, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return fmt.Errorf("sms_aliyun_template_param_failed: %w", err)
	}

	params := map[string]string{
		"AccessKeyId":      sender.accessKeyID,
		"Action":           "SendSms",
		"Format":           "JSON",
		"PhoneNumbers":     phoneNumber,
		"RegionId":         aliyunRegion,
		"SignName":         sender.signName,
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureNonce":   nonce(),
		"SignatureVersion": "1.0",
		"TemplateCode":     sender.templateCode,
		"TemplateParam":    string(templateParam),
		"Timestamp":        time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		"Version":          aliyunAPIVersion,
	}
	params["Signature"] = sender.sign(params)

	requestURL := aliyunEndpoint + "?" + encodeQuery(params)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("sms_aliyun_request_build_failed: %w", err)
	}

	response, err := sender.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("sms_aliyun_request_failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("sms_aliyun_read_response_failed: %w", err)
	}

	var result aliyunResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("sms_aliyun_decode_response_failed: %w", err)
	}

	if result.Code != "OK" {
		return fmt.Errorf("sms_aliyun_rejected: %s (%s)", result.Code, result.Message)
	}

	return nil
}

// # RPC Signature

// sign computes the HMAC-SHA1 RPC signature over the sorted parameter set.
func (sender *AliyunSender) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, specialEncode(key)+"="+specialEncode(params[key]))
	}
	canonical := strings.Join(pairs, "&")

	stringToSign := "GET&" + specialEncode("/") + "&" + specialEncode(canonical)

	mac := hmac.New(sha1.New, []byte(sender.accessKeySecret+"&"))
	mac.Write([]byte(stringToSign))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// specialEncode applies Aliyun's variant of RFC 3986 percent-encoding.
func specialEncode(value string) string {
	encoded := url.QueryEscape(value)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	encoded = strings.ReplaceAll(encoded, "*", "%2A")
	encoded = strings.ReplaceAll(encoded, "%7E", "~")
	return encoded
}

// encodeQuery builds the final request query string.
func encodeQuery(params map[string]string) string {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	return values.Encode()
}

// nonce produces a unique value per request to defeat replay detection.
func nonce() string {
	buffer := make([]byte, 16)
	if _, err := rand.Read(buffer); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buffer)
}
