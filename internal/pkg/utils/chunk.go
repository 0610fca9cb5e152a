package utils

// ChunkSlice 将 items 按 size 切分为若干段，最后一段可能不足 size。
// size <= 0 时视为整体一段。返回的段共享底层数组，调用方不应修改。
func ChunkSlice[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
