package utils

import "github.com/google/uuid"

// NewID 不透明字符串 id，所有存储后端共用
func NewID() string { return uuid.NewString() }
