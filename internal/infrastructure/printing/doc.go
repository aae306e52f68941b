// Package printing renders loan repayment schedules and collection sheets
// to PDF. Embedded html/template files are filled with application data and
// printed by a headless Chrome driven through chromedp.
package printing
