package config

import (
	// Go Internal Packages
	"os"
	"strings"
)

// LoadSecrets Loads the secret variables and overrides the config
func LoadSecrets(k Config) Config {
	overrides := map[string]*string{
		"TANDA_CLIENT_ID":       &k.Tanda.ClientID,
		"TANDA_CLIENT_SECRET":   &k.Tanda.ClientSecret,
		"TANDA_ORG_ID":          &k.Tanda.OrganisationID,
		"TANDA_MODE":            &k.Tanda.Mode,
		"TANDA_AUTH_BASE_URL":   &k.Tanda.AuthBaseURL,
		"TANDA_API_BASE_URL":    &k.Tanda.APIBaseURL,
		"TANDA_BASE_RESULT_URL": &k.Tanda.BaseResultURL,
		"TANDA_RESULT_URL":      &k.Tanda.ResultURL,
		"TANDA_C2B_RESULT_URL":  &k.Tanda.C2BResultURL,
		"TANDA_P2P_RESULT_URL":  &k.Tanda.P2PResultURL,
		"TANDA_IPN_URL":         &k.Tanda.IPNURL,
		"MONGO_URI":             &k.Mongo.URI,
		"REDIS_URI":             &k.Redis.URI,
		"REDIS_PASSWORD":        &k.Redis.Password,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}

	KafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if KafkaBrokers != "" {
		k.Kafka.Brokers = strings.Split(KafkaBrokers, ",")
	}

	IsProdMode := os.Getenv("IS_PROD_MODE")
	if IsProdMode != "" {
		k.IsProdMode = IsProdMode == "true"
	}

	k.Tanda.ResolveEndpoints()
	return k
}
