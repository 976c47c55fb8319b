package sqlite

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"

	"github.com/jhoicas/inventario-patrimonio/pkg/textnorm"
)

// foldFunc nombre de la función SQL que pliega mayúsculas y acentos; LIKE de SQLite sólo pliega ASCII.
const foldFunc = "fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return textnorm.Fold(v), nil
	case []byte:
		return textnorm.Fold(string(v)), nil
	default:
		return textnorm.Fold(fmt.Sprint(v)), nil
	}
}
