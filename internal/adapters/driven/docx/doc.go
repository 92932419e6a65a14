// Package docx opens WordprocessingML documents for placeholder editing.
//
// Only the text of w:t elements is exposed. Each w:t of a body or table-cell
// paragraph becomes one domain.Run; on save just the text of changed runs is
// rewritten in word/document.xml and every other byte of the package is kept.
package docx
