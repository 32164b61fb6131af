package config

type TikTokSecretData struct {
	ClientKey    string `json:"clientKey"`
	ClientSecret string `json:"clientSecret"`
	RefreshToken string `json:"refreshToken"`
}

type PostgresSecretData struct {
	ConnectionString string `json:"connectionString"`
}
