// Package fuzztests houses Go fuzz harnesses that exercise the formatting
// engine. Its goal is to smoke test robustness and guard against panics or
// hangs on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через format.Run и проверять, что
// ошибки остаются типизированными, а смещения не выходят за пределы входа.
//
// Не делает: запись файлов, выполнение CLI.
//
// Зависимости: internal/format, internal/testkit.

package fuzztests
