package signing

import "fmt"

// SigV4Request holds the inputs the Volcano-style AWS SigV4 canonical
// request builder needs (spec §4.4).
type SigV4Request struct {
	Method         string
	Path           string
	Query          string
	ContentType    string
	Host           string
	XDate          string // YYYYMMDDTHHMMSSZ
	Body           []byte
	AccessKeyID    string
	SecretKey      string
	Region         string
	Service        string
	SignedHeaders  string // e.g. "content-type;host;x-date"
	CanonicalOrder []string
}

// SigV4Result carries the derived signature plus the Authorization header
// value, for callers that want either piece individually.
type SigV4Result struct {
	ShortDate        string
	CredentialScope  string
	CanonicalRequest string
	StringToSign     string
	Signature        string
	Authorization    string
}

// SignSigV4 implements the exact algorithm of spec §4.4 for Volcano:
// canonical headers -> canonical request -> credential scope ->
// string-to-sign -> 4-step HMAC derived key -> signature -> Authorization
// header. It is a pure function of its inputs (spec §8 "Signing determinism").
func SignSigV4(r SigV4Request) SigV4Result {
	shortDate := r.XDate[:8]

	canonicalHeaders := fmt.Sprintf("content-type:%s\nhost:%s\nx-date:%s\n", r.ContentType, r.Host, r.XDate)
	bodyHash := HexLower(SHA256Sum(r.Body))

	canonicalRequest := fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s",
		r.Method, r.Path, r.Query, canonicalHeaders, r.SignedHeaders, bodyHash)

	credentialScope := fmt.Sprintf("%s/%s/%s/request", shortDate, r.Region, r.Service)

	stringToSign := fmt.Sprintf("HMAC-SHA256\n%s\n%s\n%s",
		r.XDate, credentialScope, HexLower(SHA256Sum([]byte(canonicalRequest))))

	kDate := HMACSHA256([]byte(r.SecretKey), []byte(shortDate))
	kRegion := HMACSHA256(kDate, []byte(r.Region))
	kService := HMACSHA256(kRegion, []byte(r.Service))
	kSigning := HMACSHA256(kService, []byte("request"))

	signature := HexLower(HMACSHA256(kSigning, []byte(stringToSign)))

	authorization := fmt.Sprintf("HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		r.AccessKeyID, credentialScope, r.SignedHeaders, signature)

	return SigV4Result{
		ShortDate:        shortDate,
		CredentialScope:  credentialScope,
		CanonicalRequest: canonicalRequest,
		StringToSign:     stringToSign,
		Signature:        signature,
		Authorization:    authorization,
	}
}

// NiuTransCanonical builds the canonical request string NiuTrans signs with
// a plain HMAC-SHA256 over the API key (spec §4.4): a 4-line block ending in
// the base64 SHA-256 digest header.
func NiuTransCanonical(host, date, requestLine string, body []byte) string {
	digest := Base64Std(SHA256Sum(body))
	return fmt.Sprintf("host:%s\ndate:%s\n%s\ndigest: SHA-256=%s", host, date, requestLine, digest)
}

// NiuTransAuthorization signs the canonical request with apiKey and formats
// the Authorization header spec §4.4 specifies.
func NiuTransAuthorization(apiKey, canonical string) string {
	sig := Base64Std(HMACSHA256([]byte(apiKey), []byte(canonical)))
	return fmt.Sprintf(`algorithm="hmac-sha256", headers="host date request-line digest", signature="%s"`, sig)
}
