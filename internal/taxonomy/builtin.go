package taxonomy

// Category names used by the built-in catalog.
const (
	CategoryLanguages = "Programming Languages"
	CategoryDataEng   = "Data Engineering"
	CategoryDatabases = "Databases"
	CategoryAnalysis  = "Data Analysis"
	CategoryML        = "Machine Learning"
	CategoryNLPAI     = "NLP & AI"
	CategoryCloud     = "Cloud Platforms"
	CategoryBI        = "BI & Visualization"
	CategoryDevOps    = "DevOps & Tools"
)

// Builtin returns the built-in skill catalog. Pattern order within each
// skill is authored and significant (first match wins). Several surface
// forms intentionally fold variants into one canonical skill (e.g. mysql
// under sql as well as under mysql itself); extraction resolves each skill
// independently, so the overlap is harmless.
func Builtin() *Catalog {
	c, err := New(builtinSkills)
	if err != nil {
		// The table below is static; a failure here is a programming error.
		panic(err)
	}
	return c
}

var builtinSkills = []SkillDefinition{
	// Programming languages
	{Name: "python", Patterns: []string{"python", "py3", "python3"}, Category: CategoryLanguages},
	{Name: "sql", Patterns: []string{"sql", "tsql", "plsql", "mysql", "postgresql", "sqlite"}, Category: CategoryLanguages},
	{Name: "java", Patterns: []string{"java"}, Category: CategoryLanguages},
	{Name: "javascript", Patterns: []string{"javascript", "js", `node\.js`, "node", "typescript", "ts"}, Category: CategoryLanguages},
	{Name: "r", Patterns: []string{"r", "r programming", "r language"}, Category: CategoryLanguages},
	{Name: "scala", Patterns: []string{"scala"}, Category: CategoryLanguages},
	{Name: "golang", Patterns: []string{"go", "golang"}, Category: CategoryLanguages},
	{Name: "rust", Patterns: []string{"rust"}, Category: CategoryLanguages},
	{Name: "cpp", Patterns: []string{`c\+\+`, "c plus plus"}, Category: CategoryLanguages},
	{Name: "csharp", Patterns: []string{"c#", "csharp", "dotnet"}, Category: CategoryLanguages},
	{Name: "php", Patterns: []string{"php"}, Category: CategoryLanguages},

	// Data & analytics
	{Name: "pandas", Patterns: []string{"pandas", "dataframe"}, Category: CategoryAnalysis},
	{Name: "numpy", Patterns: []string{"numpy", "numerical python"}, Category: CategoryAnalysis},
	{Name: "scikit-learn", Patterns: []string{"scikit-learn", "sklearn"}, Category: CategoryAnalysis},
	{Name: "spark", Patterns: []string{"spark", "pyspark", "apache spark"}, Category: CategoryDataEng},
	{Name: "hadoop", Patterns: []string{"hadoop"}, Category: CategoryDataEng},
	{Name: "hive", Patterns: []string{"hive", "apache hive"}, Category: CategoryDataEng},
	{Name: "pig", Patterns: []string{"apache pig", "pig"}},
	{Name: "kafka", Patterns: []string{"kafka", "apache kafka"}, Category: CategoryDataEng},
	{Name: "airflow", Patterns: []string{"airflow", "apache airflow", "dag"}, Category: CategoryDataEng},
	{Name: "luigi", Patterns: []string{"luigi"}, Category: CategoryDataEng},
	{Name: "dbt", Patterns: []string{"dbt", "data build tool"}, Category: CategoryDataEng},
	{Name: "talend", Patterns: []string{"talend"}, Category: CategoryDataEng},
	{Name: "informatica", Patterns: []string{"informatica"}, Category: CategoryDataEng},
	{Name: "ssis", Patterns: []string{"ssis", "sql server integration"}, Category: CategoryDataEng},
	{Name: "etl", Patterns: []string{"etl", "extract transform load"}, Category: CategoryDataEng},
	{Name: "elt", Patterns: []string{"elt", "extract load transform"}, Category: CategoryDataEng},

	// Databases
	{Name: "postgresql", Patterns: []string{"postgresql", "postgres", "psql"}, Category: CategoryDatabases},
	{Name: "mysql", Patterns: []string{"mysql"}, Category: CategoryDatabases},
	{Name: "mongodb", Patterns: []string{"mongodb", "mongo", "nosql"}, Category: CategoryDatabases},
	{Name: "cassandra", Patterns: []string{"cassandra", "apache cassandra"}, Category: CategoryDatabases},
	{Name: "dynamodb", Patterns: []string{"dynamodb"}, Category: CategoryDatabases},
	{Name: "redis", Patterns: []string{"redis"}, Category: CategoryDatabases},
	{Name: "elasticsearch", Patterns: []string{"elasticsearch", "elastic search"}, Category: CategoryDatabases},
	{Name: "snowflake", Patterns: []string{"snowflake"}, Category: CategoryDatabases},
	{Name: "redshift", Patterns: []string{"redshift", "amazon redshift"}, Category: CategoryDatabases},
	{Name: "bigquery", Patterns: []string{"bigquery", "big query"}, Category: CategoryDatabases},
	{Name: "teradata", Patterns: []string{"teradata"}},
	{Name: "oracle", Patterns: []string{"oracle database", "oracle"}, Category: CategoryDatabases},
	{Name: "sqlserver", Patterns: []string{"sql server", "mssql"}, Category: CategoryDatabases},

	// ML & AI
	{Name: "tensorflow", Patterns: []string{"tensorflow", "tf"}, Category: CategoryML},
	{Name: "pytorch", Patterns: []string{"pytorch", "torch"}, Category: CategoryML},
	{Name: "keras", Patterns: []string{"keras"}, Category: CategoryML},
	{Name: "xgboost", Patterns: []string{"xgboost"}, Category: CategoryML},
	{Name: "lightgbm", Patterns: []string{"lightgbm", "light gbm"}, Category: CategoryML},
	{Name: "catboost", Patterns: []string{"catboost"}, Category: CategoryML},
	{Name: "mlflow", Patterns: []string{"mlflow"}, Category: CategoryML},
	{Name: "machine_learning", Patterns: []string{"machine learning", "ml", `machine\s+learning`}, Category: CategoryML},
	{Name: "deep_learning", Patterns: []string{"deep learning", "neural network"}, Category: CategoryML},
	{Name: "nlp", Patterns: []string{"nlp", "natural language processing", "text mining"}, Category: CategoryNLPAI},
	{Name: "computer_vision", Patterns: []string{"computer vision", "cv", "image processing"}, Category: CategoryNLPAI},

	// Cloud platforms
	{Name: "aws", Patterns: []string{"aws", "amazon web services", "ec2", "s3", "lambda", "rds"}, Category: CategoryCloud},
	{Name: "gcp", Patterns: []string{"gcp", "google cloud", "bigquery", "dataflow"}, Category: CategoryCloud},
	{Name: "azure", Patterns: []string{"azure", "microsoft azure", "synapse", "cosmosdb"}, Category: CategoryCloud},
	{Name: "kubernetes", Patterns: []string{"kubernetes", "k8s", "container"}, Category: CategoryCloud},
	{Name: "docker", Patterns: []string{"docker", "containerization"}, Category: CategoryCloud},
	{Name: "sagemaker", Patterns: []string{"sagemaker"}, Category: CategoryCloud},

	// BI & visualization
	{Name: "tableau", Patterns: []string{"tableau"}, Category: CategoryBI},
	{Name: "powerbi", Patterns: []string{"power bi", "powerbi", "power-bi"}, Category: CategoryBI},
	{Name: "qlik", Patterns: []string{"qlik", "qlikview", "qliktools"}, Category: CategoryBI},
	{Name: "looker", Patterns: []string{"looker", "google looker"}, Category: CategoryBI},
	{Name: "metabase", Patterns: []string{"metabase"}, Category: CategoryBI},
	{Name: "grafana", Patterns: []string{"grafana"}, Category: CategoryBI},
	{Name: "excel", Patterns: []string{"excel", "vba"}, Category: CategoryAnalysis},
	{Name: "power_pivot", Patterns: []string{"power pivot", "pivot table"}, Category: CategoryAnalysis},

	// Version control & DevOps
	{Name: "git", Patterns: []string{"git", "github", "gitlab"}, Category: CategoryDevOps},
	{Name: "jenkins", Patterns: []string{"jenkins"}, Category: CategoryDevOps},
	{Name: "gitlab", Patterns: []string{"gitlab"}},
	{Name: "github", Patterns: []string{"github"}},
	{Name: "terraform", Patterns: []string{"terraform"}, Category: CategoryDevOps},
	{Name: "ansible", Patterns: []string{"ansible"}, Category: CategoryDevOps},
	{Name: "ci_cd", Patterns: []string{"ci/cd", "continuous integration", "continuous delivery"}, Category: CategoryDevOps},

	// Other tools
	{Name: "jupyter", Patterns: []string{"jupyter", "jupyter notebook", "ipython"}, Category: CategoryDevOps},
	{Name: "dataiku", Patterns: []string{"dataiku"}, Category: CategoryDevOps},
	{Name: "knime", Patterns: []string{"knime"}, Category: CategoryDevOps},
	{Name: "spss", Patterns: []string{"spss", "ibm spss"}, Category: CategoryDevOps},
	{Name: "sas", Patterns: []string{"sas"}, Category: CategoryDevOps},
	{Name: "apache", Patterns: []string{"apache"}},
}
