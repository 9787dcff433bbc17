package bot

import "database/sql"

func nullNone() sql.NullString {
	return sql.NullString{}
}
