// Package uncss removes unused rules from a stylesheet.
//
// The HTML is parsed once; every selector of every style rule is matched
// against it and selectors that match no element are dropped. Rules left
// without selectors are removed, as are grouping at-rules (@media, @supports)
// left without rules. Other at-rules (@font-face, @keyframes, @import) are
// kept unchanged.
package uncss
