// Package shell 交互式菜单：只持有会话句柄，每个选项都是对 Session 的一次调用
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/user/cinerag/internal/model"
	"github.com/user/cinerag/internal/service"
	"github.com/user/cinerag/internal/utils"
)

const (
	resultLimit      = 5
	demoLimit        = 3
	descriptionWidth = 80
	rule             = "============================================================"
)

// errQuit 输入结束
var errQuit = errors.New("input closed")

// Shell 菜单循环
type Shell struct {
	session *service.Session
	in      *bufio.Scanner
	out     io.Writer

	lines <-chan string
}

func New(session *service.Session, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		session: session,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run 运行菜单直到选择退出、输入结束或 ctx 取消
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.lines = readLines(s.in, done)

	s.println("🎬 Welcome to CineRAG!")
	s.println("Intelligent movie discovery over semantic embeddings")

	for {

		s.println("\n🎯 Main Menu:")
		s.println("1. 🔍 Search movies")
		s.println("2. 🎯 Get recommendations")
		s.println("3. 📚 Browse catalog")
		s.println("4. ➕ Add a movie")
		s.println("5. 📊 View analytics")
		s.println("6. 🚪 Exit")

		choice, err := s.prompt(ctx, "\nSelect option (1-6): ")
		if err != nil {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.search(ctx)
		case "2":
			err = s.recommend(ctx)
		case "3":
			s.browse()
		case "4":
			err = s.addMovie(ctx)
		case "5":
			s.analytics()
		case "6":
			s.println("👋 Thanks for using CineRAG!")
			return nil
		default:
			s.println("❌ Invalid choice. Please select 1-6!")
		}

		if errors.Is(err, errQuit) {
			return nil
		}
	}
}

func (s *Shell) search(ctx context.Context) error {
	query, err := s.prompt(ctx, "\n🔍 What movies are you looking for? ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		s.println("❌ Please enter a search query!")
		return nil
	}

	results, err := s.session.Search(ctx, query, resultLimit)
	if err != nil {
		s.printf("⚠️ Search failed: %v\n", err)
		return nil
	}
	if len(results) == 0 {
		s.println("❌ No movies found. Try different search terms!")
		return nil
	}

	s.printf("\n🎬 Found %d movies:\n%s\n", len(results), rule)
	for i, r := range results {
		s.printf("%d. %s (Match: %.1f%%)\n", i+1, r.Movie, r.Score*100)
		s.printf("   📝 %s\n", r.Movie.Description)
		if r.Reason != "" {
			s.printf("   💡 %s\n", r.Reason)
		}
		if err := s.collectFeedback(ctx, r.Movie.Title); err != nil {
			return err
		}
		s.println("")
	}
	return nil
}

// collectFeedback 逐条询问 l/d/s，直到输入合法
func (s *Shell) collectFeedback(ctx context.Context, title string) error {
	for {
		answer, err := s.prompt(ctx, "   Rate this movie: 👍 Like / 👎 Dislike / ⏭️ Skip (l/d/s): ")
		if err != nil {
			return err
		}

		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer == "" || answer == "s" || answer == "skip" {
			return nil
		}

		kind, err := model.ParseFeedbackKind(answer)
		if err != nil {
			s.println("   Please enter 'l', 'd', or 's'")
			continue
		}

		if err := s.session.RecordFeedback(ctx, title, kind); err != nil {
			s.printf("   ⚠️ Feedback not recorded: %v\n", err)
			return nil
		}
		if kind == model.FeedbackLike {
			s.printf("   👍 Learned: you liked %s\n", title)
		} else {
			s.printf("   👎 Learned: you disliked %s\n", title)
		}
		return nil
	}
}

func (s *Shell) recommend(ctx context.Context) error {
	s.println("\n🤖 Generating personalized recommendations...")

	profile := s.session.Profile()
	if len(profile.Liked) == 0 {
		s.println("🤔 Not enough data about your preferences yet!")
		s.println("💡 Try searching and rating movies first!")
		return nil
	}

	results, err := s.session.Recommend(ctx, resultLimit)
	if err != nil {
		s.printf("⚠️ Recommendation failed: %v\n", err)
		return nil
	}

	s.printf("🎬 Movies you might love:\n%s\n", rule)
	shown := 0
	for _, r := range results {
		// 已喜欢的电影不再推荐
		if profile.IsLiked(r.Movie.Title) {
			continue
		}
		shown++
		s.printf("%d. %s (Confidence: %.1f%%)\n", shown, r.Movie, r.Score*100)
		s.printf("   📝 %s\n", r.Movie.Description)
		if r.Reason != "" {
			s.printf("   💡 %s\n", r.Reason)
		}
		s.println("")
	}
	if shown == 0 {
		s.println("🤷 Everything that matches is already on your liked list!")
	}
	return nil
}

func (s *Shell) browse() {
	movies := s.session.Movies()
	if len(movies) == 0 {
		s.println("📭 The catalog is empty!")
		return
	}

	profile := s.session.Profile()
	s.printf("\n📚 Catalog (%d movies):\n%s\n", len(movies), rule)
	for i, m := range movies {
		status := ""
		switch {
		case profile.IsLiked(m.Title):
			status = " 👍"
		case profile.IsDisliked(m.Title):
			status = " 👎"
		}
		s.printf("%d. %s%s\n", i+1, m, status)
		s.printf("   📝 %s\n\n", utils.Truncate(m.Description, descriptionWidth))
	}
}

func (s *Shell) addMovie(ctx context.Context) error {
	s.println("\n🎬 Add a movie to the catalog")
	s.println("----------------------------------------")

	fields := []string{"Movie title: ", "Release year: ", "Genre (e.g., Action/Adventure): ", "Rating (0-10): ", "Movie description: "}
	answers := make([]string, len(fields))
	for i, f := range fields {
		v, err := s.prompt(ctx, f)
		if err != nil {
			return err
		}
		answers[i] = strings.TrimSpace(v)
		if i == 3 {
			if _, ok := model.ParseRating(answers[i]); !ok {
				s.printf("Using default rating: %.1f\n", model.DefaultRating)
			}
		}
	}

	rating, _ := model.ParseRating(answers[3])
	movie := model.Movie{
		Title:       utils.CleanMovieTitle(answers[0]),
		Year:        answers[1],
		Genre:       answers[2],
		Rating:      rating,
		Description: answers[4],
	}
	if movie.Title == "" || movie.Description == "" {
		s.println("❌ Title and description are required!")
		return nil
	}

	if _, err := s.session.AddMovie(ctx, movie); err != nil {
		s.printf("⚠️ Movie not added: %v\n", err)
		return nil
	}
	s.printf("✅ Added %s to the catalog!\n", movie.Title)
	return nil
}

func (s *Shell) analytics() {
	a := s.session.Analytics()

	s.printf("\n📊 User Analytics:\n%s\n", rule[:40])
	s.printf("🎬 Movies in catalog: %d\n", a.MovieCount)
	s.printf("👍 Movies you liked: %d\n", a.LikedCount)
	s.printf("👎 Movies you disliked: %d\n", a.DislikedCount)
	s.printf("🎭 Preferred genres: %d\n", a.GenreCount)
	s.printf("📈 Total interactions: %d\n", a.InteractionCount)

	if len(a.RecentLiked) > 0 {
		s.println("\n💖 Your favorite movies (last 5):")
		for _, title := range a.RecentLiked {
			s.printf("  • %s\n", title)
		}
	}
	if len(a.PreferredGenres) > 0 {
		s.printf("\n🎭 Your top genres: %s\n", strings.Join(a.PreferredGenres, ", "))
	}
	if a.RecentLikeRate != nil {
		s.printf("\n📊 Recent like rate: %.1f%%\n", *a.RecentLikeRate)
	}
}

// Demo 依次运行固定的演示查询
func Demo(ctx context.Context, session *service.Session, out io.Writer) error {
	fmt.Fprintln(out, "🔧 CineRAG Demo")
	fmt.Fprintln(out, rule[:40])

	for _, q := range service.DemoQueries {
		fmt.Fprintf(out, "\nQuery: '%s'\n", q)
		results, err := session.Search(ctx, q, demoLimit)
		if err != nil {
			return fmt.Errorf("demo query %q: %w", q, err)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "  No results found")
			continue
		}
		for i, r := range results {
			fmt.Fprintf(out, "  %d. %s (Score: %.3f)\n", i+1, r.Movie.Title, r.Score)
		}
	}

	fmt.Fprintln(out, "\n🤖 Demo complete!")
	return nil
}

// readLines 在后台逐行读取输入，输入结束时关闭通道
func readLines(sc *bufio.Scanner, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

// prompt 输出提示并读取一行；输入结束或 ctx 取消时返回 errQuit
func (s *Shell) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(s.out, label)
	if ctx.Err() != nil {
		fmt.Fprintln(s.out)
		return "", errQuit
	}
	select {
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", errQuit
	case line, ok := <-s.lines:
		if !ok {
			fmt.Fprintln(s.out)
			return "", errQuit
		}
		return line, nil
	}
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
