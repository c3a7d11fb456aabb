package minio

import "testing"

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	missingEndpoint := valid
	missingEndpoint.Endpoint = ""
	if err := missingEndpoint.Validate(); err == nil {
		t.Error("Expected error for missing endpoint")
	}

	missingAccessKey := valid
	missingAccessKey.AccessKeyID = ""
	if err := missingAccessKey.Validate(); err == nil {
		t.Error("Expected error for missing access key")
	}

	missingSecret := valid
	missingSecret.SecretAccessKey = ""
	if err := missingSecret.Validate(); err == nil {
		t.Error("Expected error for missing secret key")
	}
}
