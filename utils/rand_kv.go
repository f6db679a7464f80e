package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var (
	lock    = sync.Mutex{}
	randStr = rand.New(rand.NewSource(time.Now().Unix()))
	letters = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
)

// GetTestKey 生成测试用的key
func GetTestKey(i int) []byte {
	return []byte(fmt.Sprintf("easystack-test-key-%09d", i))
}

// RandomValue 生成n字节的随机value
func RandomValue(n int) []byte {
	b := make([]byte, n)
	lock.Lock()
	for i := range b {
		b[i] = letters[randStr.Intn(len(letters))]
	}
	lock.Unlock()
	return b
}
