package page

import "github.com/charmbracelet/glamour"

const usageMarkdown = `### 用法:

- 将HTML和CSS复制并粘贴到左侧的输入框中
- 点击清除多余代码按钮 (ctrl+s)
- 下面是见证奇迹的时刻
- 未使用的CSS已经消失了！

### 高级使用

对于高级选项，请考虑将 UNCSS 添加到您的开发堆栈中 -
[Gulp](https://github.com/ben-eb/gulp-uncss),
[Grunt](https://github.com/addyosmani/grunt-uncss),
[PostCSS](https://github.com/RyanZim/postcss-uncss).
`

// renderUsage renders the usage section for the given wrap width.
func renderUsage(width int, dark bool) string {
	style := "light"
	if dark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return usageMarkdown
	}
	return safeRenderMarkdown(renderer, usageMarkdown)
}

// safeRenderMarkdown renders markdown with panic recovery
func safeRenderMarkdown(r *glamour.TermRenderer, content string) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
