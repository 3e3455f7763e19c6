// internal/pkg/integrity/verifier.go
package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Verifier 对跨服务消息计算并校验摘要。
// 共享密钥由进程入口注入，禁止包级单例（密钥轮换只影响构造点）。
type Verifier struct {
	secret []byte
}

// NewVerifier 创建一个使用给定共享密钥的 Verifier。
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Hash 返回消息规范化形式的 SHA-256 十六进制摘要。
// 没有密钥参与，单独使用不构成安全控制，只用于完整性抽查。
func (v *Verifier) Hash(msg Value) string {
	sum := sha256.Sum256([]byte(msg.Canonical()))
	return hex.EncodeToString(sum[:])
}

// HMAC 返回消息规范化形式的 HMAC-SHA256 十六进制摘要。
func (v *Verifier) HMAC(msg Value) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(msg.Canonical()))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify 重新计算 HMAC 并与收到的摘要做常数时间比较。
// 摘要缺失、格式错误或不匹配一律返回 false，从不 panic。
func (v *Verifier) Verify(received string, msg Value) bool {
	if received == "" {
		return false
	}
	expected := v.HMAC(msg)
	if len(received) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(received), []byte(expected)) == 1
}
