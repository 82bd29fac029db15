package database

import "database/sql"

// CreateToken stores a freshly minted API token for a user
func CreateToken(token, userID string) error {
	_, err := DB.Exec(`INSERT INTO tokens (token, user_id) VALUES (?, ?)`, token, userID)
	return err
}

// DeleteToken revokes a token. Returns false when the token did not exist.
func DeleteToken(token string) (bool, error) {
	res, err := DB.Exec(`DELETE FROM tokens WHERE token = ?`, token)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// TokenExists reports whether a token is currently valid
func TokenExists(token string) (bool, error) {
	var id int64
	err := DB.QueryRow(`SELECT id FROM tokens WHERE token = ?`, token).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
