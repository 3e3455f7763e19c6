package infrastructure

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	// 翻译后的 gorm 哨兵
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.Wrap(gorm.ErrDuplicatedKey, "insert inventario")))

	// 未经翻译的原始驱动错误
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '77-3' for key 'idx_producto_bodega'"}))
	assert.True(t, isDuplicateKey(errors.Wrap(&mysql.MySQLError{Number: 1062}, "insert inventario")))

	assert.False(t, isDuplicateKey(nil))
	assert.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
}
