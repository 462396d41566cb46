package telegram

import (
	"strings"
	"unicode/utf8"
)

// TelegramMessageLimit Telegram 单条消息长度上限
const TelegramMessageLimit = 4096

// ChunkMessage splits text into sendable pieces, preferring paragraph and
// sentence boundaries over hard cuts.
func ChunkMessage(text string) []string {
	if len(text) <= TelegramMessageLimit {
		return []string{text}
	}

	var chunks []string
	remaining := text

	for len(remaining) > TelegramMessageLimit {
		cut := splitPoint(remaining)
		chunks = append(chunks, strings.TrimRight(remaining[:cut], " \t\n"))
		remaining = strings.TrimLeft(remaining[cut:], " \t\n")
	}
	if remaining != "" {
		chunks = append(chunks, remaining)
	}

	return chunks
}

// splitPoint 选择分割点
// 优先级: 段落边界 > 行边界 > 句子边界 > 空格 > 硬截断
func splitPoint(text string) int {
	window := text[:TelegramMessageLimit]

	if idx := strings.LastIndex(window, "\n\n"); idx >= TelegramMessageLimit/2 {
		return idx
	}
	if idx := strings.LastIndex(window, "\n"); idx >= TelegramMessageLimit/2 {
		return idx
	}
	if idx := lastSentenceEnd(window); idx >= TelegramMessageLimit/2 {
		return idx
	}
	if idx := strings.LastIndex(window, " "); idx >= TelegramMessageLimit/3 {
		return idx
	}

	// 硬截断必须落在 rune 边界上, 否则会发送非法 UTF-8
	cut := TelegramMessageLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		// Not valid UTF-8 at all; cut raw to guarantee progress.
		return TelegramMessageLimit
	}
	return cut
}

// lastSentenceEnd 返回窗口内最后一个句子结束位置 (含标点)
func lastSentenceEnd(window string) int {
	best := -1
	for _, mark := range []string{". ", "。", "！", "？"} {
		if idx := strings.LastIndex(window, mark); idx > best {
			best = idx + len(mark)
		}
	}
	return best
}
