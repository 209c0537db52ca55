package pdf

// RowCells exposes rowCells to the external test package.
var RowCells = rowCells
