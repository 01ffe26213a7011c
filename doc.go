// Package teammaker splits a table of people into balanced teams.
//
// A table is delimited text whose first line names the columns; the first
// column labels each row. Teams are generated at random, balanced over one
// or more category columns, or balanced and then perturbed. A search runs
// many generations and keeps the partition whose distribution of one target
// category is closest to uniform.
//
// # Generate
//
//	client, _ := teammaker.New(teammaker.WithSeed(42))
//	tbl, _ := client.LoadTable(file, teammaker.WithCharset("ISO-8859-1"))
//	teams, _ := client.Teams(tbl).
//	    Count(4).
//	    Strategy(teammaker.Categorical).
//	    Category(1, teammaker.Priority(2)).
//	    Category(2).
//	    Generate(ctx)
//	for i, members := range teams.Members {
//	    fmt.Println(i+1, members)
//	}
//
// # Search
//
//	best, _ := client.Teams(tbl).
//	    Count(4).
//	    Strategy(teammaker.Random).
//	    Category(1).
//	    Search(ctx, 0, 500)
//	fmt.Println(best.Score, best.Distribution)
package teammaker
