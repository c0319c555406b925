package sqlinline

const QIncrementUsageCounter = `--sql e91a4d27-6b53-4f08-ac79-3d16e8b2f540
insert into usage_counters (day, counter, value)
values ($1::date, $2::text, $3::int)
on conflict (day, counter) do update set value = usage_counters.value + excluded.value;
`

const QUsageSummary24h = `--sql f04b8e61-2c95-4a37-bd18-7a52c9e0d6f3
select counter, sum(value)::int
from usage_counters
where day >= (current_date - interval '1 day')
group by counter;
`
