// Package signing gathers the Signing & Credential Primitives of spec §4
// (component 5): keyed/unkeyed hashing, a SigV4-style canonical-request
// builder, Youdao's web-dict signature, DeepL's anti-detection transforms,
// and Bing's credential scraper.
package signing

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// HMACSHA256 computes the raw HMAC-SHA256 digest of data keyed by key.
func HMACSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// SHA256Sum computes the raw SHA-256 digest of data.
func SHA256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// MD5Sum computes the raw MD5 digest of data (needed for Youdao's legacy
// web-dict signature scheme; MD5 here is a wire-compatibility requirement,
// not a security control).
func MD5Sum(data []byte) []byte {
	sum := md5.Sum(data)
	return sum[:]
}

// MD5Hex is MD5Sum hex-encoded, the shape Youdao's sign formula wants.
func MD5Hex(data []byte) string {
	return hex.EncodeToString(MD5Sum(data))
}

// Base64Std is standard base64 encoding (used for the NiuTrans digest and
// signature).
func Base64Std(data []byte) string { return base64.StdEncoding.EncodeToString(data) }

// HexLower is lower-case hex encoding (used throughout SigV4).
func HexLower(data []byte) string { return hex.EncodeToString(data) }
