package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSponsorAddress = "0x" + strings.Repeat("a1", 32)

func Test_SignerConfig_Validate(t *testing.T) {
	t.Run("valid sidecar", func(t *testing.T) {
		cfg := &SignerConfig{
			Type: SignerTypeSidecar,
			Sidecar: &SidecarSignerConfig{
				Url:            "http://localhost:7000/sign",
				SponsorAddress: testSponsorAddress,
			},
		}
		require.NoError(t, cfg.Validate())
	})

	t.Run("sidecar requires address and url", func(t *testing.T) {
		cfg := &SignerConfig{Type: SignerTypeSidecar, Sidecar: &SidecarSignerConfig{}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signer.sidecar.url")
		assert.Contains(t, err.Error(), "signer.sidecar.sponsorAddress")
	})

	t.Run("sidecar url must be absolute", func(t *testing.T) {
		cfg := &SidecarSignerConfig{Url: "localhost:7000", SponsorAddress: testSponsorAddress}
		assert.Error(t, cfg.Validate())
	})

	t.Run("sidecar address must parse", func(t *testing.T) {
		cfg := &SidecarSignerConfig{Url: "https://signer.internal", SponsorAddress: "0x1234"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing backend section", func(t *testing.T) {
		for _, typ := range []SignerType{SignerTypeSidecar, SignerTypeLocal, SignerTypeKms} {
			assert.Error(t, (&SignerConfig{Type: typ}).Validate(), typ.String())
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		err := (&SignerConfig{Type: "hsm"}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signer.type")
	})

	t.Run("local requires exactly one key source", func(t *testing.T) {
		assert.Error(t, (&LocalSignerConfig{}).Validate())
		assert.Error(t, (&LocalSignerConfig{PrivateKey: "abc", KeystorePath: "/tmp/sui.keystore"}).Validate())
		assert.NoError(t, (&LocalSignerConfig{KeystorePath: "/tmp/sui.keystore"}).Validate())
		assert.NoError(t, (&LocalSignerConfig{PrivateKey: "abc", SponsorAddress: testSponsorAddress}).Validate())
	})

	t.Run("kms requires key id", func(t *testing.T) {
		assert.Error(t, (&KmsSignerConfig{}).Validate())
		assert.NoError(t, (&KmsSignerConfig{KeyId: "alias/sponsor"}).Validate())
	})

	t.Run("journal", func(t *testing.T) {
		base := func(j *JournalConfig) *SignerConfig {
			return &SignerConfig{
				Type:    SignerTypeKms,
				Kms:     &KmsSignerConfig{KeyId: "key"},
				Journal: j,
			}
		}
		assert.NoError(t, base(&JournalConfig{Type: JournalTypeMemory}).Validate())
		assert.Error(t, base(&JournalConfig{Type: JournalTypeBadger}).Validate())
		assert.NoError(t, base(&JournalConfig{Type: JournalTypeBadger, DataPath: "/var/lib/signer"}).Validate())
		assert.Error(t, base(&JournalConfig{Type: JournalTypeRedis}).Validate())
		assert.Error(t, base(&JournalConfig{Type: JournalTypeRedis, RedisAddress: "localhost:6379", RedisDB: 16}).Validate())
		assert.Error(t, base(&JournalConfig{Type: "postgres"}).Validate())
	})
}

func Test_SidecarServerConfig_Validate(t *testing.T) {
	assert.NoError(t, (&SidecarServerConfig{Port: 7000}).Validate())
	assert.NoError(t, (&SidecarServerConfig{Port: 7000, MaxSignRate: 10, SignBurst: 5}).Validate())
	assert.Error(t, (&SidecarServerConfig{Port: 0}).Validate())
	assert.Error(t, (&SidecarServerConfig{Port: 7000, MaxSignRate: -1}).Validate())
	assert.Error(t, (&SidecarServerConfig{Port: 7000, MaxSignRate: 10}).Validate())
}
