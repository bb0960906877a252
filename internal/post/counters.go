package post

import (
	"gorm.io/gorm"
)

// BumpCounter applies a floored delta to one of the denormalized counters and
// advances the row version, all in a single UPDATE so concurrent bumps never
// lose each other. Callers run it inside the same transaction as the like or
// comment row change it mirrors. A missing post is reported through the
// returned row count, not an error.
func BumpCounter(tx *gorm.DB, postID, column string, delta int64) (found bool, err error) {
	// CASE instead of GREATEST keeps the clamp portable across postgres and
	// the sqlite test driver
	res := tx.Model(&Post{}).Where("id = ?", postID).UpdateColumns(map[string]any{
		column:    gorm.Expr("CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta),
		"version": gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CurrentVersion reads the post's version inside a transaction, after a bump,
// so mutations can hand the fresh value back to the client.
func CurrentVersion(tx *gorm.DB, postID string) (int64, error) {
	var version int64
	err := tx.Model(&Post{}).Where("id = ?", postID).Select("version").Scan(&version).Error
	return version, err
}
