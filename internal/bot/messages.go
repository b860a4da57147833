package bot

import (
	"fmt"
	"time"

	"github.com/mmcdole/releasebot/internal/domain"
)

// User-facing texts. All of them are HTML.
const (
	msgHelp = "<b>Доступные команды:</b>\n\n" +
		"🎬 <b>Фильмы</b>\n" +
		"• <code>/releases_movie</code> — цифровые релизы фильмов сегодня.\n" +
		"• <code>/next_movie</code> — ближайшие цифровые релизы фильмов.\n" +
		"• <code>/random_movie</code> — случайный фильм по жанру.\n\n" +
		"📺 <b>Сериалы</b>\n" +
		"• <code>/releases_series</code> — премьеры новых сериалов сегодня.\n" +
		"• <code>/next_series</code> — ближайшие премьеры сериалов.\n" +
		"• <code>/random_series</code> — случайный сериал по жанру.\n\n" +
		"🎲 <b>Прочее</b>\n" +
		"• <code>/year &lt;год&gt;</code> — что выходило в этот день раньше.\n" +
		"• <code>/stop</code> — отписаться от ежедневной рассылки.\n" +
		"• <code>/help</code> — показать это сообщение."

	msgUnsubscribed    = "❌ Этот чат отписан от рассылки."
	msgNotSubscribed   = "Этот чат и так не был подписан."
	msgStaleList       = "Ошибка: список устарел. Запросите заново."
	msgFetchFailed     = "Произошла ошибка при получении данных."
	msgSearchFailed    = "Произошла ошибка при поиске."
	msgUnexpected      = "Что-то пошло не так. Попробуйте позже."
	msgYearUsage       = "Укажите год после команды, например: <code>/year 1999</code>"
	msgYearInvalid     = "Введите корректный год (например, 1995)."
	msgRandomNoMatch   = "🤷‍♂️ Не удалось найти подходящий вариант. Попробуйте еще раз."
	msgRandomEmpty     = "🤷‍♂️ К сожалению, не удалось найти ничего подходящего. Попробуйте другой жанр."
	msgPicking         = "🔍 Подбираю..."
	msgCategoryCartoon = "Мультфильм"
	msgCategoryAnime   = "Аниме"
)

// kindTexts holds the per-kind wording of one message family
type kindTexts map[domain.MediaKind]string

var (
	progressToday = kindTexts{
		domain.KindMovie:  "🔍 Ищу <b>цифровые релизы фильмов</b> на сегодня...",
		domain.KindSeries: "🔍 Ищу <b>премьеры сериалов</b> на сегодня...",
	}
	emptyToday = kindTexts{
		domain.KindMovie:  "🎬 Значимых цифровых релизов фильмов на сегодня не найдено.",
		domain.KindSeries: "📺 Значимых премьер сериалов на сегодня не найдено.",
	}
	prefixToday = kindTexts{
		domain.KindMovie:  "🎬 Сегодня в цифре (фильм):",
		domain.KindSeries: "📺 Сегодня премьера (сериал):",
	}
	progressNext = kindTexts{
		domain.KindMovie:  "🔍 Ищу ближайшие <b>цифровые релизы фильмов</b>...",
		domain.KindSeries: "🔍 Ищу ближайшие <b>премьеры сериалов</b>...",
	}
	emptyNext = kindTexts{
		domain.KindMovie:  "🎬 Не удалось найти цифровые релизы фильмов в ближайшие %d дн.",
		domain.KindSeries: "📺 Не удалось найти премьеры сериалов в ближайшие %d дн.",
	}
	prefixNext = kindTexts{
		domain.KindMovie:  "🎬 Ближайший релиз фильмов (%s):",
		domain.KindSeries: "📺 Ближайшая премьера сериалов (%s):",
	}
	prefixRandom = kindTexts{
		domain.KindMovie:  "🎲 Случайный фильм:",
		domain.KindSeries: "🎲 Случайный сериал:",
	}
	chooserPrompt = kindTexts{
		domain.KindMovie:  "Выберите категорию или жанр фильма:",
		domain.KindSeries: "Выберите жанр сериала:",
	}
	genresNotLoaded = kindTexts{
		domain.KindMovie:  "Жанры фильмов еще не загружены, попробуйте через минуту.",
		domain.KindSeries: "Жанры сериалов еще не загружены, попробуйте через минуту.",
	}
	kindNoun = kindTexts{
		domain.KindMovie:  "фильм",
		domain.KindSeries: "сериал",
	}
)

func nextPrefix(kind domain.MediaKind, day time.Time) string {
	return fmt.Sprintf(prefixNext[kind], day.Format("02.01.2006"))
}

func yearProgress(limit, year int) string {
	return fmt.Sprintf("🔍 Ищу топ-%d <b>фильма</b>, вышедших в этот день в %d году...", limit, year)
}

func yearEmpty(year int) string {
	return fmt.Sprintf("🤷‍♂️ Не нашел значимых премьер фильмов за эту дату в %d году.", year)
}

func yearPrefix(year int) string {
	return fmt.Sprintf("🎞️ Релиз %d года:", year)
}

func randomProgress(kind domain.MediaKind, category string) string {
	return fmt.Sprintf("🔍 Подбираю случайный %s в категории '%s'...", kindNoun[kind], category)
}
