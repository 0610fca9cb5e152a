package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSlice(t *testing.T) {
	// 空输入
	assert.Nil(t, ChunkSlice([]int(nil), 3))

	// size 大于总长，整体一段
	assert.Equal(t, [][]int{{1, 2}}, ChunkSlice([]int{1, 2}, 100))

	// 整除
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, ChunkSlice([]int{1, 2, 3, 4}, 2))

	// 余数段
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5}}, ChunkSlice([]int{1, 2, 3, 4, 5}, 3))

	// size 非法时视为一段
	assert.Equal(t, [][]int{{1, 2, 3}}, ChunkSlice([]int{1, 2, 3}, 0))
}
