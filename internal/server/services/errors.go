package services

import (
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func invalid(format string, args ...any) error {
	return &common.ValidationError{Msg: fmt.Sprintf(format, args...)}
}
