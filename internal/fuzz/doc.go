// Package fuzztests houses Go fuzz harnesses for the markup pipeline
// (source -> markup parser -> ast builder -> printer). They guard against
// panics and hangs on arbitrary input and check that whatever the printer
// accepts it formats to a fixed point.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
