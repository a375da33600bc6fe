package aws_handler

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

type AWSHandler struct {
	SecretManager *SecretManager
}

func NewAWSHandler(region string) (*AWSHandler, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)
	if err != nil {
		return nil, err
	}

	return &AWSHandler{
		SecretManager: NewSecretManager(secretsmanager.New(sess)),
	}, nil
}

type SecretManager struct {
	svc *secretsmanager.SecretsManager
}

func NewSecretManager(svc *secretsmanager.SecretsManager) *SecretManager {
	return &SecretManager{svc: svc}
}

func (s *SecretManager) GetSecretValue(secretID string) (string, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	}

	result, err := s.svc.GetSecretValue(input)
	if err != nil {
		return "", err
	}

	return *result.SecretString, nil
}

// GetPassword resolves a database password secret. RDS-managed secrets store
// a JSON document with a "password" key; plain string secrets are returned
// as-is.
func (s *SecretManager) GetPassword(secretID string) (string, error) {
	raw, err := s.GetSecretValue(secretID)
	if err != nil {
		return "", err
	}

	var doc struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err == nil && doc.Password != "" {
		return doc.Password, nil
	}
	return raw, nil
}
