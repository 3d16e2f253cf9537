package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突，行在调用方读取后已被修改
var ErrOptimisticLock = errors.New("row was modified by another operation, reload and retry")
