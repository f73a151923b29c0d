package database

import "github.com/google/uuid"

// generateRecordKey returns a redis key of the form pictures:<uuid v4>.
func generateRecordKey() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return tableName + ":" + id.String(), nil
}
