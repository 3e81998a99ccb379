package validator

import (
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

var (
	regionRegexp   = regexp.MustCompile(`^[a-z]{2}(-gov)?-[a-z]+-[0-9]$`)
	languageRegexp = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)
	poolIDRegexp   = regexp.MustCompile(`^[\w-]+_[0-9a-zA-Z]+$`)
)

func init() {
	govalidator.TagMap["listen_addr"] = isListenAddr
	govalidator.TagMap["path"] = govalidator.IsUnixFilePath
	govalidator.TagMap["natural"] = isNatural
	govalidator.TagMap["aws_region"] = IsRegion
	govalidator.TagMap["language"] = IsLanguage
	govalidator.TagMap["pool_id"] = isPoolID
	govalidator.TagMap["date"] = IsDate
	govalidator.TagMap["execute_api_arn"] = isExecuteAPIArn
}

func ValidateStruct(s interface{}) error {
	ok, err := govalidator.ValidateStruct(s)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("validation failed")
	}
	return nil
}

// IsRegion matches AWS region names like "eu-west-1".
func IsRegion(s string) bool {
	return regionRegexp.MatchString(s)
}

// IsLanguage matches the language codes accepted by the translation
// service: "fr", "zh-TW", "fa-AF".
func IsLanguage(s string) bool {
	return languageRegexp.MatchString(s)
}

func isPoolID(s string) bool {
	return poolIDRegexp.MatchString(s)
}

// IsDate matches calendar dates formatted as YYYY-MM-DD.
func IsDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func isExecuteAPIArn(s string) bool {
	return strings.HasPrefix(s, "arn:aws:execute-api:") && len(strings.Split(s, ":")) == 6
}

func isListenAddr(s string) bool {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	if !govalidator.IsPort(port) {
		return false
	}
	// dual-stack listener
	if len(host) == 0 {
		return true
	}

	return govalidator.IsHost(host) || govalidator.IsIP(host)
}

func isNatural(str string) bool {
	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return false
	}

	return v >= 0
}
