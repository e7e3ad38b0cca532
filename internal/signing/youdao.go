package signing

import "fmt"

// youdaoDictKey is the fixed constant Youdao's web-dict signature formula
// requires (spec §4.3). It is not a secret — it is baked into every public
// client of this endpoint — but it is named here rather than inline so the
// formula below reads as spec'd.
const youdaoDictKey = "asdjnjfenknafdfsdfsd"

// YoudaoWebDictSign computes the sign/salt/time triple spec §4.3 requires:
//
//	time = len(text+"webdict") mod 10
//	salt = md5(text+"webdict")
//	sign = md5("web" + text + time + key + salt)
func YoudaoWebDictSign(text string) (sign, salt string, timeVal int) {
	timeVal = (len(text) + len("webdict")) % 10
	salt = MD5Hex([]byte(text + "webdict"))
	sign = MD5Hex([]byte(fmt.Sprintf("web%s%d%s%s", text, timeVal, youdaoDictKey, salt)))
	return sign, salt, timeVal
}
