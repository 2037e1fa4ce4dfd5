package domain

import (
	"regexp"
	"strings"
)

var hashtagRe = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// ExtractTags 提取 #标签：去掉 #、转小写、去重并保持首次出现顺序
func ExtractTags(content string) []string {
	matches := hashtagRe.FindAllString(content, -1)
	out := make([]string, 0, len(matches))
	seen := map[string]struct{}{}
	for _, m := range matches {
		t := strings.ToLower(m[1:])
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
