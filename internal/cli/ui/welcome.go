package ui

import (
	"fmt"
	"io"
)

// PrintWelcome выводит приветствие
func PrintWelcome(w io.Writer) {
	fmt.Fprintln(w, ColorBold+IconRobot+" jobAgent"+ColorReset)
	fmt.Fprintln(w, ColorGray+"Диалоговый агент с веб-поиском"+ColorReset)
	fmt.Fprintln(w)
	PrintHelp(w)
	fmt.Fprintln(w, ColorGray+"⬆️ ⬇️"+ColorReset+" Используйте стрелки для навигации по истории")
	fmt.Fprintln(w)
}

// PrintHelp выводит список доступных команд
func PrintHelp(w io.Writer) {
	fmt.Fprintln(w, ColorYellow+IconList+" Доступные команды:"+ColorReset)
	fmt.Fprintln(w, "  "+ColorGreen+"<текст>"+ColorReset+"          - Сообщение агенту")
	fmt.Fprintln(w, "  "+ColorGreen+"/start"+ColorReset+"           - Приветствие")
	fmt.Fprintln(w, "  "+ColorGreen+"runs"+ColorReset+"             - Последние запуски краулера")
	fmt.Fprintln(w, "  "+ColorGreen+"run"+ColorReset+" <id>         - Отклики запуска")
	fmt.Fprintln(w, "  "+ColorGreen+"help"+ColorReset+"             - Эта справка")
	fmt.Fprintln(w, "  "+ColorGreen+"clear"+ColorReset+"            - Очистить экран")
	fmt.Fprintln(w, "  "+ColorGreen+"exit"+ColorReset+"             - Выход")
	fmt.Fprintln(w)
}
