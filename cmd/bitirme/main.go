// Copyright 2025 bitirme2 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"fmt"

	"github.com/SerberkSagnak/bitirme2/base/log"
	"github.com/SerberkSagnak/bitirme2/config"
	"github.com/SerberkSagnak/bitirme2/dataset"
	"github.com/SerberkSagnak/bitirme2/engine"
	"github.com/SerberkSagnak/bitirme2/model"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "bitirme",
	Short: "Hybrid recommendation and evaluation engine.",
}

var recommendCommand = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend items for a user.",
	Run: func(cmd *cobra.Command, args []string) {
		conf, m, catalog := loadData(cmd)
		e := buildEngine(conf, m, catalog)
		userId, _ := cmd.Flags().GetInt64("user")
		n, _ := cmd.Flags().GetInt("n")
		if n <= 0 {
			n = conf.Evaluate.TopN
		}
		recommendations, err := e.Recommend(userId, n)
		if errors.Is(err, engine.ErrInsufficientSignal) {
			fmt.Println("insufficient data to recommend for this user")
			return
		} else if err != nil {
			log.Logger().Fatal("failed to recommend", zap.Error(err))
		}
		fmt.Printf("%-6v%-10v%-10v%-14v%-10v%-10v%v\n",
			"rank", "item", "score", "collaborative", "content", "factor", "popularity")
		for i, rec := range recommendations {
			fmt.Printf("%-6d%-10d%-10.4f%-14.4f%-10.4f%-10.4f%.4f\n",
				i+1, rec.ItemId, rec.Score,
				rec.Contributions[model.Collaborative],
				rec.Contributions[model.Content],
				rec.Contributions[model.Factor],
				rec.Contributions[model.Popularity])
		}
	},
}

var predictCommand = &cobra.Command{
	Use:   "predict",
	Short: "Predict the rating of a single user-item pair.",
	Run: func(cmd *cobra.Command, args []string) {
		conf, m, catalog := loadData(cmd)
		e := buildEngine(conf, m, catalog)
		userId, _ := cmd.Flags().GetInt64("user")
		itemId, _ := cmd.Flags().GetInt64("item")
		prediction, err := e.PredictRating(userId, itemId)
		if errors.Is(err, engine.ErrInsufficientSignal) {
			fmt.Println("insufficient data to predict for this pair")
			return
		} else if err != nil {
			log.Logger().Fatal("failed to predict", zap.Error(err))
		}
		fmt.Printf("predicted rating of user %d for item %d: %.2f\n", userId, itemId, prediction)
	},
}

var abTestCommand = &cobra.Command{
	Use:   "abtest",
	Short: "Compare the hybrid blend against every single scorer.",
	Run: func(cmd *cobra.Command, args []string) {
		conf, m, catalog := loadData(cmd)
		train, testSet := splitData(cmd, conf, m)
		e := buildEngine(conf, train, catalog)
		results, err := e.ABTest(context.Background(), testSet, train.UserIDs(), engine.Arms(), conf.Evaluate.TopN)
		if err != nil {
			log.Logger().Fatal("failed to run A/B test", zap.Error(err))
		}
		fmt.Printf("%-16v%-11v%-11v%-11v%-11v%-11v%-11v%v\n",
			"algorithm", "precision", "recall", "f1", "coverage", "diversity", "novelty", "users")
		for _, result := range results {
			fmt.Printf("%-16v%-11.4f%-11.4f%-11.4f%-11.4f%-11.4f%-11.4f%d\n",
				result.Arm, result.Metrics.Precision, result.Metrics.Recall, result.Metrics.F1,
				result.Metrics.Coverage, result.Metrics.Diversity, result.Metrics.Novelty, result.TestUsers)
		}
	},
}

var optimizeCommand = &cobra.Command{
	Use:   "optimize",
	Short: "Search the weight grid for the best mean F1.",
	Run: func(cmd *cobra.Command, args []string) {
		conf, m, catalog := loadData(cmd)
		train, testSet := splitData(cmd, conf, m)
		e := buildEngine(conf, train, catalog)
		best, err := e.OptimizeWeights(context.Background(), testSet, train.UserIDs(),
			engine.DefaultSearchGrid(), conf.Evaluate.TopN)
		if err != nil {
			log.Logger().Fatal("failed to optimize weights", zap.Error(err))
		}
		fmt.Printf("best weights: collaborative=%.2f content=%.2f factor=%.2f popularity=%.2f\n",
			best.Collaborative, best.Content, best.Factor, best.Popularity)
	},
}

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics of the loaded data.",
	Run: func(cmd *cobra.Command, args []string) {
		conf, m, catalog := loadData(cmd)
		e := buildEngine(conf, m, catalog)
		analytics, err := e.Analytics()
		if err != nil {
			log.Logger().Fatal("failed to collect statistics", zap.Error(err))
		}
		fmt.Printf("users:    %d\n", analytics.NumUsers)
		fmt.Printf("items:    %d\n", analytics.NumItems)
		fmt.Printf("ratings:  %d\n", analytics.NumRatings)
		fmt.Printf("sparsity: %.2f%%\n", analytics.Sparsity*100)
		fmt.Printf("weights:  collaborative=%.2f content=%.2f factor=%.2f popularity=%.2f\n",
			analytics.Weights.Collaborative, analytics.Weights.Content,
			analytics.Weights.Factor, analytics.Weights.Popularity)
	},
}

func loadData(cmd *cobra.Command) (*config.Config, *dataset.Matrix, *dataset.Catalog) {
	debug, _ := cmd.Flags().GetBool("debug")
	log.SetLogger(cmd.Flags(), debug)
	configPath, _ := cmd.Flags().GetString("config")
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		log.Logger().Fatal("failed to load config", zap.Error(err))
	}
	ratingsPath, _ := cmd.Flags().GetString("ratings")
	m, err := dataset.LoadRatings(ratingsPath)
	if err != nil {
		log.Logger().Fatal("failed to load ratings", zap.Error(err))
	}
	itemsPath, _ := cmd.Flags().GetString("items")
	catalog, err := dataset.LoadItems(itemsPath)
	if err != nil {
		log.Logger().Fatal("failed to load items", zap.Error(err))
	}
	return conf, m, catalog
}

func splitData(cmd *cobra.Command, conf *config.Config, m *dataset.Matrix) (*dataset.Matrix, *dataset.Matrix) {
	testRatio, _ := cmd.Flags().GetFloat32("test-ratio")
	if testRatio <= 0 {
		testRatio = conf.Evaluate.TestRatio
	}
	seed, _ := cmd.Flags().GetInt64("seed")
	return dataset.Split(m, testRatio, seed)
}

func buildEngine(conf *config.Config, m *dataset.Matrix, catalog *dataset.Catalog) *engine.Engine {
	e, err := engine.NewEngine(conf.ToParams(), conf.Weights)
	if err != nil {
		log.Logger().Fatal("failed to create engine", zap.Error(err))
	}
	if err := e.Refresh(context.Background(), m, catalog); err != nil {
		log.Logger().Fatal("failed to refresh engine", zap.Error(err))
	}
	return e
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().String("ratings", "ratings.csv", "path of the ratings file")
	rootCommand.PersistentFlags().String("items", "items.csv", "path of the items file")

	recommendCommand.Flags().Int64("user", 0, "user to recommend for")
	recommendCommand.Flags().Int("n", 0, "number of recommendations")
	predictCommand.Flags().Int64("user", 0, "user of the pair")
	predictCommand.Flags().Int64("item", 0, "item of the pair")
	for _, command := range []*cobra.Command{abTestCommand, optimizeCommand} {
		command.Flags().Float32("test-ratio", 0, "fraction of ratings held out per user")
		command.Flags().Int64("seed", 0, "random seed of the split")
	}
	rootCommand.AddCommand(recommendCommand, predictCommand, abTestCommand, optimizeCommand, statsCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
