package view

type MinioStorageCreds struct {
	BucketName      string
	IsActive        bool
	Endpoint        string
	Crt             string
	AccessKeyId     string
	SecretAccessKey string
	Insecure        bool
}

type DbCredentials struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	PoolSize int
}
