package database

const tableName = "pictures"

type Picture struct {
	Name string `db:"name"` // uploaded filename, stored as-is
	Data []byte `db:"data"` // raw upload payload stored as binary
}
