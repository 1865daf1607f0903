package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"KYCrypto/internal/model"
)

func newRecommendCommand(opts *rootOptions) *cobra.Command {
	var (
		answers model.QuestionnaireAnswers
		asJSON  bool
		horizon string
		risk    string
		level   string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Produce a portfolio allocation for a questionnaire from flags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers.TimeHorizon = model.TimeHorizon(horizon)
			answers.RiskTolerance = model.RiskTolerance(risk)
			answers.ExperienceLevel = model.ExperienceLevel(level)
			if err := answers.Validate(); err != nil {
				return err
			}

			a, err := newApp(opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			p := a.acquirer.Acquire(context.Background(), answers)
			if asJSON {
				out, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			printPortfolio(p)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&answers.Age, "age", "", "investor age")
	f.StringVar(&answers.InvestmentGoal, "goal", "", "investment goal")
	f.StringVar(&horizon, "horizon", string(model.HorizonMedium), "time horizon (Short, Medium, Long)")
	f.StringVar(&risk, "risk", string(model.RiskMedium), "risk tolerance (low, medium, high)")
	f.StringVar(&level, "experience", string(model.ExperienceBeginner), "experience level (Beginner, Intermediate, Advanced)")
	f.Float64Var(&answers.InvestmentAmount, "amount", 0, "amount to invest in USD")
	f.StringVar(&answers.VolatilityComfort, "volatility", "", "comfort with volatility")
	f.StringVar(&answers.MarketExpectation, "expectation", "", "market expectation")
	f.BoolVar(&asJSON, "json", false, "print the portfolio as JSON")
	return cmd
}

func printPortfolio(p model.Portfolio) {
	fmt.Printf("%s portfolio (%s)\n\n", p.Type, p.Source)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ASSET\tSHARE\tAMOUNT\tSENTIMENT\tVOLATILITY\tMARKET CAP")
	for _, e := range p.Allocation {
		amount := model.NotAvailable
		if e.Amount != nil {
			amount = "$" + humanize.CommafWithDigits(*e.Amount, 2)
		}
		fmt.Fprintf(w, "%s\t%.0f%%\t%s\t%s\t%s\t%s\n",
			e.Name, e.Value, amount, e.Sentiment, e.Volatility, e.MarketCap)
	}
	_ = w.Flush()
}
