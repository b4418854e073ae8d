package config

func GetPort() string {
	return GetEnvOrDefault("PORT", "8080")
}

// GetMaxUploadBytes caps the size of an uploaded PDF
func GetMaxUploadBytes() int64 {
	return int64(parseEnvInt("MAX_UPLOAD_BYTES", 32<<20))
}
