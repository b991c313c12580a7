package config

// Бакеты объектного хранилища
const (
	BucketAvatars               = "avatars"
	BucketMessageAttachments    = "message-attachments"
	BucketVerificationDocuments = "verification-documents"
)

// BucketRules описывает ограничения загрузки для одного бакета
type BucketRules struct {
	Bucket       string
	MaxSize      int64
	AllowedTypes []string
	IsPublic     bool
}

// AvatarRules - только изображения, публичные
func (c *Config) AvatarRules() BucketRules {
	return BucketRules{
		Bucket:       BucketAvatars,
		MaxSize:      c.Upload.AvatarMaxSize,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
		IsPublic:     true,
	}
}

func (c *Config) AttachmentRules() BucketRules {
	return BucketRules{
		Bucket:  BucketMessageAttachments,
		MaxSize: c.Upload.AttachmentMaxSize,
		AllowedTypes: []string{
			"image/jpeg", "image/png", "image/gif", "image/webp",
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"text/plain",
			"application/zip",
		},
		IsPublic: true,
	}
}

// DocumentRules - документы верификации, доступны только по подписанной ссылке
func (c *Config) DocumentRules() BucketRules {
	return BucketRules{
		Bucket:       BucketVerificationDocuments,
		MaxSize:      c.Upload.DocumentMaxSize,
		AllowedTypes: []string{"application/pdf", "image/jpeg", "image/png"},
		IsPublic:     false,
	}
}
