package config

import (
	"fmt"
	"net/url"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names shared by the signer binaries
const (
	EnvSignerType           = "SIGNER_TYPE"
	EnvSignerSponsorAddress = "SIGNER_SPONSOR_ADDRESS"
	EnvSignerSidecarUrl     = "SIGNER_SIDECAR_URL"
	EnvSignerVerifySidecar  = "SIGNER_VERIFY_SIDECAR_RESPONSES"
	EnvSignerPrivateKey     = "SIGNER_PRIVATE_KEY"
	EnvSignerKeystorePath   = "SIGNER_KEYSTORE_PATH"
	EnvSignerKmsKeyId       = "SIGNER_KMS_KEY_ID"
	EnvSignerAwsRegion      = "SIGNER_AWS_REGION"
	EnvSignerJournalType    = "SIGNER_JOURNAL_TYPE"
	EnvSignerJournalPath    = "SIGNER_JOURNAL_PATH"
	EnvSignerRedisAddress   = "SIGNER_REDIS_ADDRESS"
	EnvSignerRedisPassword  = "SIGNER_REDIS_PASSWORD"
	EnvSignerRedisDB        = "SIGNER_REDIS_DB"
	EnvSignerVerbose        = "SIGNER_VERBOSE"
	EnvSignerKeygenScheme   = "SIGNER_KEYGEN_SCHEME"

	EnvSidecarPort        = "SIDECAR_PORT"
	EnvSidecarMaxSignRate = "SIDECAR_MAX_SIGN_RATE"
	EnvSidecarSignBurst   = "SIDECAR_SIGN_BURST"
)

type SignerType string

func (s SignerType) String() string {
	return string(s)
}

const (
	// SignerTypeSidecar delegates signing to an out-of-process service
	SignerTypeSidecar SignerType = "sidecar"
	// SignerTypeLocal holds the key in memory. Tests and devnets only.
	SignerTypeLocal SignerType = "local"
	// SignerTypeKms signs with an AWS KMS asymmetric key
	SignerTypeKms SignerType = "kms"
)

type JournalType string

func (j JournalType) String() string {
	return string(j)
}

const (
	JournalTypeNone   JournalType = ""
	JournalTypeMemory JournalType = "memory"
	JournalTypeBadger JournalType = "badger"
	JournalTypeRedis  JournalType = "redis"
)

// SignerConfig selects and configures exactly one signing backend.
type SignerConfig struct {
	Type    SignerType           `json:"type" yaml:"type"`
	Sidecar *SidecarSignerConfig `json:"sidecar,omitempty" yaml:"sidecar,omitempty"`
	Local   *LocalSignerConfig   `json:"local,omitempty" yaml:"local,omitempty"`
	Kms     *KmsSignerConfig     `json:"kms,omitempty" yaml:"kms,omitempty"`
	Journal *JournalConfig       `json:"journal,omitempty" yaml:"journal,omitempty"`
}

func (sc *SignerConfig) Validate() error {
	var allErrors field.ErrorList
	root := field.NewPath("signer")

	switch sc.Type {
	case SignerTypeSidecar:
		if sc.Sidecar == nil {
			allErrors = append(allErrors, field.Required(root.Child("sidecar"), "sidecar config is required for sidecar signer"))
		} else {
			allErrors = append(allErrors, sc.Sidecar.validate(root.Child("sidecar"))...)
		}
	case SignerTypeLocal:
		if sc.Local == nil {
			allErrors = append(allErrors, field.Required(root.Child("local"), "local config is required for local signer"))
		} else {
			allErrors = append(allErrors, sc.Local.validate(root.Child("local"))...)
		}
	case SignerTypeKms:
		if sc.Kms == nil {
			allErrors = append(allErrors, field.Required(root.Child("kms"), "kms config is required for kms signer"))
		} else {
			allErrors = append(allErrors, sc.Kms.validate(root.Child("kms"))...)
		}
	default:
		allErrors = append(allErrors, field.NotSupported(root.Child("type"), sc.Type,
			[]string{SignerTypeSidecar.String(), SignerTypeLocal.String(), SignerTypeKms.String()}))
	}

	if sc.Journal != nil {
		allErrors = append(allErrors, sc.Journal.validate(root.Child("journal"))...)
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// SidecarSignerConfig points at the remote signing service. The sponsor
// address is configured because the key never leaves the sidecar.
type SidecarSignerConfig struct {
	Url             string `json:"url" yaml:"url"`
	SponsorAddress  string `json:"sponsorAddress" yaml:"sponsorAddress"`
	VerifyResponses bool   `json:"verifyResponses" yaml:"verifyResponses"`
}

func (ssc *SidecarSignerConfig) Validate() error {
	if errs := ssc.validate(field.NewPath("sidecar")); len(errs) > 0 {
		return errs.ToAggregate()
	}
	return nil
}

func (ssc *SidecarSignerConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if ssc.Url == "" {
		allErrors = append(allErrors, field.Required(path.Child("url"), "url is required"))
	} else if u, err := url.Parse(ssc.Url); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		allErrors = append(allErrors, field.Invalid(path.Child("url"), ssc.Url, "must be an absolute http(s) url"))
	}
	allErrors = append(allErrors, validateAddress(path.Child("sponsorAddress"), ssc.SponsorAddress, true)...)
	return allErrors
}

// LocalSignerConfig loads the key either inline or from a keystore file.
type LocalSignerConfig struct {
	// PrivateKey is a keystore entry: base64(flag || 32 byte private key)
	PrivateKey   string `json:"privateKey" yaml:"privateKey"`
	KeystorePath string `json:"keystorePath" yaml:"keystorePath"`
	// SponsorAddress selects the key inside the keystore; defaults to the first
	SponsorAddress string `json:"sponsorAddress" yaml:"sponsorAddress"`
}

func (lsc *LocalSignerConfig) Validate() error {
	if errs := lsc.validate(field.NewPath("local")); len(errs) > 0 {
		return errs.ToAggregate()
	}
	return nil
}

func (lsc *LocalSignerConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if lsc.PrivateKey == "" && lsc.KeystorePath == "" {
		allErrors = append(allErrors, field.Required(path.Child("privateKey"), "one of privateKey or keystorePath is required"))
	}
	if lsc.PrivateKey != "" && lsc.KeystorePath != "" {
		allErrors = append(allErrors, field.Forbidden(path.Child("keystorePath"), "privateKey and keystorePath are mutually exclusive"))
	}
	allErrors = append(allErrors, validateAddress(path.Child("sponsorAddress"), lsc.SponsorAddress, false)...)
	return allErrors
}

type KmsSignerConfig struct {
	KeyId  string `json:"keyId" yaml:"keyId"`
	Region string `json:"region" yaml:"region"`
}

func (ksc *KmsSignerConfig) Validate() error {
	if errs := ksc.validate(field.NewPath("kms")); len(errs) > 0 {
		return errs.ToAggregate()
	}
	return nil
}

func (ksc *KmsSignerConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if ksc.KeyId == "" {
		allErrors = append(allErrors, field.Required(path.Child("keyId"), "keyId is required"))
	}
	return allErrors
}

// JournalConfig configures where signed transactions are recorded.
type JournalConfig struct {
	Type          JournalType `json:"type" yaml:"type"`
	DataPath      string      `json:"dataPath" yaml:"dataPath"`
	RedisAddress  string      `json:"redisAddress" yaml:"redisAddress"`
	RedisPassword string      `json:"redisPassword" yaml:"redisPassword"`
	RedisDB       int         `json:"redisDb" yaml:"redisDb"`
	KeyPrefix     string      `json:"keyPrefix" yaml:"keyPrefix"`
}

func (jc *JournalConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	switch jc.Type {
	case JournalTypeNone, JournalTypeMemory:
	case JournalTypeBadger:
		if jc.DataPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("dataPath"), "dataPath is required for badger journal"))
		}
	case JournalTypeRedis:
		if jc.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(path.Child("redisAddress"), "redisAddress is required for redis journal"))
		}
		if jc.RedisDB < 0 || jc.RedisDB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redisDb"), jc.RedisDB, "must be between 0-15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), jc.Type,
			[]string{JournalTypeMemory.String(), JournalTypeBadger.String(), JournalTypeRedis.String()}))
	}
	return allErrors
}

// SidecarServerConfig configures the reference signing sidecar.
type SidecarServerConfig struct {
	Port int `json:"port"`
	// MaxSignRate is the sustained sign requests per second; 0 disables limiting
	MaxSignRate float64 `json:"maxSignRate"`
	SignBurst   int     `json:"signBurst"`
	Debug       bool    `json:"debug"`
}

func (c *SidecarServerConfig) Validate() error {
	var allErrors field.ErrorList
	path := field.NewPath("sidecarServer")
	if c.Port < 1 || c.Port > 65535 {
		allErrors = append(allErrors, field.Invalid(path.Child("port"), c.Port, "port must be between 1-65535"))
	}
	if c.MaxSignRate < 0 {
		allErrors = append(allErrors, field.Invalid(path.Child("maxSignRate"), c.MaxSignRate, "must not be negative"))
	}
	if c.MaxSignRate > 0 && c.SignBurst < 1 {
		allErrors = append(allErrors, field.Invalid(path.Child("signBurst"), c.SignBurst, "must be at least 1 when rate limiting"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func validateAddress(path *field.Path, value string, required bool) field.ErrorList {
	if value == "" {
		if required {
			return field.ErrorList{field.Required(path, "sponsor address is required")}
		}
		return nil
	}
	if _, err := address.Parse(value); err != nil {
		return field.ErrorList{field.Invalid(path, value, fmt.Sprintf("invalid sponsor address: %v", err))}
	}
	return nil
}
